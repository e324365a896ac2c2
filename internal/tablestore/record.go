package tablestore

// Field accessors coercing the untyped field map. The remote store
// returns numbers as float64 through JSON; absent fields read as zero
// values.

func (r Record) String(key string) string {
	if raw, ok := r.Fields[key]; ok {
		if s, ok := raw.(string); ok {
			return s
		}
	}
	return ""
}

func (r Record) Float(key string) float64 {
	switch v := r.Fields[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}
