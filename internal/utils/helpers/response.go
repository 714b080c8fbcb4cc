package helpers

import (
	"encoding/json"
	"net/http"
)

// Response — общий конверт ответа API.
type Response struct {
	Success bool        `json:"success"`
	ID      string      `json:"id,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details string      `json:"details,omitempty"`
}

// JSON пишет произвольное тело без конверта.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		return
	}
}

func Data(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, Response{Success: true, Data: data})
}

func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Response{Success: true, Message: msg})
}

func Created(w http.ResponseWriter, id, msg string) {
	JSON(w, http.StatusCreated, Response{Success: true, ID: id, Message: msg})
}

func Error(w http.ResponseWriter, status int, errMsg string) {
	JSON(w, status, Response{Success: false, Error: errMsg})
}

func ErrorDetails(w http.ResponseWriter, status int, errMsg, details string) {
	JSON(w, status, Response{Success: false, Error: errMsg, Details: details})
}
