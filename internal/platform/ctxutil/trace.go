package ctxutil

import "context"

type traceKey struct{}

// TraceData carries the ids that tie a request to the jobs and log lines it produces.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	if td == nil || (td.TraceID == "" && td.RequestID == "") {
		return ctx
	}
	return context.WithValue(Default(ctx), traceKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	td, _ := ctx.Value(traceKey{}).(*TraceData)
	return td
}

// Fields returns the non-empty ids as alternating logger key/value pairs.
func (td *TraceData) Fields() []any {
	if td == nil {
		return nil
	}
	var out []any
	if td.TraceID != "" {
		out = append(out, "trace_id", td.TraceID)
	}
	if td.RequestID != "" {
		out = append(out, "request_id", td.RequestID)
	}
	return out
}

// Stamp copies the ids into m without overwriting keys already present.
func (td *TraceData) Stamp(m map[string]any) {
	if m == nil {
		return
	}
	f := td.Fields()
	for i := 0; i+1 < len(f); i += 2 {
		if _, ok := m[f[i].(string)]; !ok {
			m[f[i].(string)] = f[i+1]
		}
	}
}
