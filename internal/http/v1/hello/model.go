package hello

// Greeting is the fixed value returned by GET /hello.
const Greeting = "hello from spring"

// Message is the single-entry payload of GET /hello.
type Message struct {
	Msg string `json:"msg" doc:"Greeting message" example:"hello from spring"`
}

// GetOutput wraps Message as the response body.
type GetOutput struct {
	Body Message
}
