package models

// APIResponse is the uniform envelope for every handler response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   *string     `json:"error"`
}

func NewDataResponse(data interface{}) APIResponse {
	return APIResponse{Success: true, Data: data}
}

func NewErrorResponse(message string) APIResponse {
	return APIResponse{Success: false, Error: &message}
}
