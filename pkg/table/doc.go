// Package table reads PEtab tables.
//
// PEtab tables are tab-separated files with a header row. Read keeps every
// cell as text; typed accessors such as ParameterRows convert the rows and
// report conversion problems as *CellError values tagged with the table,
// the 1-based data row and the column.
package table
