package common

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

func RespondWithError(w http.ResponseWriter, err error, debug bool) {
	httpErr := ToHTTPError(err, debug)
	if httpErr.Status >= http.StatusInternalServerError {
		log.Printf("ERROR: %s: %v", httpErr.ErrCode, err)
	}
	RespondWithJSON(w, httpErr.Status, httpErr)
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: could not encode response: %v", err)
		httpErr := ToHTTPError(fmt.Errorf("encoding response: %w", ErrInternalServer), false)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(httpErr.Status)
		w.Write([]byte(`{"errCode":"` + httpErr.ErrCode + `"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
