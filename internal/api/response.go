package api

import "github.com/gin-gonic/gin"

// jsonResponse mirrors the facade's {code, message, data} envelope: every
// handler below returns exactly this shape on both success and failure, the
// way the original JsonResponse/WebServerError pair does.
type jsonResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(200, jsonResponse{Code: 200, Message: message, Data: data})
}

// respondBadRequest reports error kinds 4/6 (spec §7): mapping-config
// validation and facade validation failures.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(400, jsonResponse{Code: 400, Message: message})
}

// respondInternalError reports error kind 7 (spec §7): host-side failures
// such as a missing adb binary or config I/O errors.
func respondInternalError(c *gin.Context, message string) {
	c.JSON(500, jsonResponse{Code: 500, Message: message})
}

func respondNotFound(c *gin.Context, message string) {
	c.JSON(404, jsonResponse{Code: 404, Message: message})
}
