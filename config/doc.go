// Package config loads the pipeline configuration from environment
// variables.
//
// Variable names follow the object store container the pipeline was first
// deployed against (MINIO_ROOT_USER, MINIO_ROOT_PASSWORD) plus a small set of
// S3_, PARQUET_, SOURCE_, TARGET_ and PIPELINE_ settings. Every setting but
// the credentials and the encryption key has a default.
//
// The main entry point is [Load]; [LoadFrom] parses an explicit environment
// and is what the tests use.
package config
