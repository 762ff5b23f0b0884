package errors

import (
	"encoding/json"
	"net/http"
)

const problemContentType = "application/problem+json"

// problemJSON renders a problem with its own media type; gin's JSON renderer
// would overwrite Content-Type with application/json.
type problemJSON struct {
	problem ProblemDetail
}

func (r problemJSON) Render(w http.ResponseWriter) error {
	r.WriteContentType(w)
	return json.NewEncoder(w).Encode(r.problem)
}

func (r problemJSON) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if val := header["Content-Type"]; len(val) == 0 {
		header["Content-Type"] = []string{problemContentType}
	}
}
