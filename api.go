// Package redact provides field-level masking of user records and the
// tabular plumbing around it.
//
// Source profiles are decoded into Record values, flattened into a Table by a
// tag-driven Plan, and passed through a Redactor that replaces the sensitive
// columns wholesale. The Table can then be written to an encrypted columnar
// file by the parquet subpackage.
//
// # Tag Syntax
//
// Projection and redaction are declared on the source type:
//
//	column:"{name}"   - column name, or a prefix when placed on a nested struct
//	redact:"{rule}"   - redaction rule applied to the projected column
//
// Valid rules:
//
//	redact:"name"      - keep first and last character
//	redact:"email"     - mask the local part, keep the domain
//	redact:"number"    - mask digits, keep the last 3 positions
//	redact:"number:1"  - mask digits, keep the last position
//	redact:"website"   - mask domain labels and interior path segments
//	redact:"round"     - coarsen a coordinate to the nearest integer
//	redact:"date"      - normalize a timestamp to YYYY-MM-DD
//
// # Basic Usage
//
//	records, _ := redact.DecodeRecords(ctx, json.New(), data)
//
//	plan, _ := redact.Use[redact.Record]()
//	table, _ := plan.Project(records)
//
//	redactor, _ := redact.NewRedactor(plan.Rules())
//	masked, report, _ := redactor.Redact(ctx, table)
//
// # Masking
//
// Built-in maskers:
//
//   - name: Jennifer → J******r, Li → L*
//   - email: jennifer@example.com → j******r@example.com
//   - number: (272) 790-0888 → (***) ***-*888
//   - website: https://randomuser.me/api/portraits/women/1.jpg → https://r********r.me/***/*********/*****/1.jpg
//
// Values that do not have the expected shape (an email without "@", a URL
// without "//") are unmaskable. The Redactor stores them as null and counts
// them separately in its Report so that "absent" and "invalid" remain
// distinguishable.
package redact
