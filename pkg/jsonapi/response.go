package jsonapi

import (
	"encoding/json"
	"net/http"
)

// WriteDocument writes a response envelope.
func WriteDocument(w http.ResponseWriter, status int, doc Document) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(doc)
}

// WriteData writes a success response with the payload under data.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteDocument(w, status, Document{Data: data})
}

// WriteDataMeta writes a success response with payload and metadata.
func WriteDataMeta(w http.ResponseWriter, status int, data any, meta Meta) {
	WriteDocument(w, status, Document{Data: data, Meta: meta})
}

// WriteError writes an error response. The HTTP status is derived from
// the first error's status field.
func WriteError(w http.ResponseWriter, errs ...Error) {
	if len(errs) == 0 {
		errs = []Error{ErrInternal("")}
	}

	status := errs[0].StatusCode()
	if status == 0 {
		status = http.StatusInternalServerError
	}

	WriteDocument(w, status, Document{Errors: errs})
}

// WriteNoContent writes a 204 No Content response.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
