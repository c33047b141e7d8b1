package models

// QuestionRequest is the payload sent to the question endpoint.
type QuestionRequest struct {
	Question string `json:"question"`
}

// QuestionResponse is the answer returned for a question.
type QuestionResponse struct {
	Response     string  `json:"response"`
	ModelUsed    string  `json:"model_used"`
	ResponseTime float64 `json:"response_time"` // seconds
}
