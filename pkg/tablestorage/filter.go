package tablestorage

import (
	"net/url"
	"strings"
)

// Filter builds the entity addressing suffix appended to a table path:
//
//	Filter("X", "")  == "(PartitionKey='X')"
//	Filter("X", "Y") == "(PartitionKey='X',RowKey='Y')"
//
// Key values are OData string literals (embedded quotes doubled) and then
// path-escaped, so ordinary keys pass through unchanged.
func Filter(partitionKey, rowKey string) string {
	var parts []string
	if partitionKey != "" {
		parts = append(parts, "PartitionKey='"+literal(partitionKey)+"'")
	}
	if rowKey != "" {
		parts = append(parts, "RowKey='"+literal(rowKey)+"'")
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func literal(v string) string {
	return url.PathEscape(strings.ReplaceAll(v, "'", "''"))
}
