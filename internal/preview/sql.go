package preview

import "strings"

const sqlSuffix = "\n\nSimulated execution - No real database connection"

// SimulateSQL pretends to run query and describes what it would have done,
// keyed on the leading keyword.
func SimulateSQL(query string) Result {
	var output string
	q := strings.ToUpper(strings.TrimSpace(query))

	switch {
	case strings.HasPrefix(q, "SELECT"):
		output = "SQL Query Results\n\n" +
			"┌─────────┬──────────────┬─────────┐\n" +
			"│ id      │ name         │ value   │\n" +
			"├─────────┼──────────────┼─────────┤\n" +
			"│ 1       │ Item Alpha   │ 150.00  │\n" +
			"│ 2       │ Item Beta    │ 275.50  │\n" +
			"│ 3       │ Item Gamma   │ 89.99   │\n" +
			"│ 4       │ Item Delta   │ 320.00  │\n" +
			"└─────────┴──────────────┴─────────┘\n" +
			"\n4 rows returned"
	case strings.HasPrefix(q, "INSERT"):
		output = "INSERT Query\n\n1 row inserted successfully\n\nAffected rows: 1"
	case strings.HasPrefix(q, "UPDATE"):
		output = "UPDATE Query\n\n2 rows updated successfully\n\nAffected rows: 2"
	case strings.HasPrefix(q, "DELETE"):
		output = "DELETE Query\n\n1 row deleted successfully\n\nAffected rows: 1"
	case strings.HasPrefix(q, "CREATE"):
		output = "CREATE Table\n\nTable created successfully\n\nStructure ready for data"
	case strings.HasPrefix(q, "ALTER"):
		output = "ALTER Table\n\nTable structure modified successfully"
	case strings.HasPrefix(q, "DROP"):
		output = "DROP Table\n\nTable would be deleted\n\nThis is a destructive operation"
	default:
		output = "Query executed successfully"
	}

	return Result{Output: output + sqlSuffix, Status: StatusWarning}
}
