package monetate

// Record is one schema row. No schema is enforced client-side.
type Record map[string]any

// Schema describes one data schema as listed by the API.
type Schema map[string]any

// SchemaList is the result of GetSchemas.
type SchemaList struct {
	// Count is the total reported by the API (meta.count).
	Count   int      `json:"count"`
	Schemas []Schema `json:"schemas"`
}

// Rows wraps the records returned by GetRecord and PostRecords.
type Rows struct {
	Rows []Record `json:"rows"`
}

// tokenEnvelope is the auth/v0/refresh/ response body.
type tokenEnvelope struct {
	Data *struct {
		Token     string  `json:"token"`
		ExpiresAt float64 `json:"expires_at"` // unix seconds
	} `json:"data"`
}

type schemasEnvelope struct {
	Meta *struct {
		Count *int `json:"count"`
	} `json:"meta"`
	Data []Schema `json:"data"`
}

type recordsEnvelope struct {
	Data *[]Record `json:"data"`
}

type postRequest struct {
	SchemaRows []Record `json:"schema_rows"`
}

type postEnvelope struct {
	Data *struct {
		SchemaRows []Record `json:"schema_rows"`
	} `json:"data"`
}
