// Package hello serves the greeting as an HTTP Cloud Function.
package hello

import (
	"encoding/json"
	"net/http"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
)

// Greeting matches the message returned by the API server.
const Greeting = "hello from spring"

func init() {
	functions.HTTP("Hello", helloHandler)
}

// Message is the response body.
type Message struct {
	Msg string `json:"msg"`
}

func helloHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Message{Msg: Greeting})
}
