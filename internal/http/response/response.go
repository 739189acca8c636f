package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 业务状态码，HTTP 状态码固定为 200
const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeTooManyRequests = 429
	CodeInternal        = 500
)

// Response 统一响应信封
type Response struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
}

// PageResponse 列表响应信封
type PageResponse struct {
	Response
	Pagination Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{StatusCode: CodeOK, Msg: "success", Data: data})
}

func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, PageResponse{
		Response:   Response{StatusCode: CodeOK, Msg: "success", Data: data},
		Pagination: pagination,
	})
}

// Error 错误响应，data 中带上 request_id 便于排查
func Error(c *gin.Context, code int, msg string) {
	var data interface{}
	if id := requestID(c); id != "" {
		data = gin.H{"request_id": id}
	}
	c.JSON(http.StatusOK, Response{StatusCode: code, Msg: msg, Data: data})
}

func Unauthorized(c *gin.Context, msg string) {
	Error(c, CodeUnauthorized, msg)
}

func Forbidden(c *gin.Context, msg string) {
	Error(c, CodeForbidden, msg)
}

func requestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString("request_id")
}
