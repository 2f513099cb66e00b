package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 错误提示（面向前端展示）
const (
	MsgParamError         = "参数错误"
	MsgInvalidCredentials = "用户名或密码错误"
	MsgTooManyAttempts    = "登录失败次数过多，请稍后再试"
	MsgDatabaseError      = "数据库错误"
	MsgCreateFailed       = "添加失败"
	MsgUpdateFailed       = "更新失败"
	MsgDeleteFailed       = "删除失败"
	MsgVerifyFailed       = "核销失败"
	MsgUndoFailed         = "撤销失败"
	MsgNotFound           = "记录不存在"
	MsgServerError        = "服务器内部错误"
)

// ErrorBody 错误响应体
type ErrorBody struct {
	Error string `json:"error"`
}

// Success 直接输出业务数据，不做外层包装
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// OK 输出 {"success": true}
func OK(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func Error(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: message})
}

func ParamError(c *gin.Context, detail string) {
	msg := MsgParamError
	if detail != "" {
		msg = msg + ": " + detail
	}
	Error(c, http.StatusBadRequest, msg)
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, MsgInvalidCredentials)
}

func TooManyRequests(c *gin.Context) {
	Error(c, http.StatusTooManyRequests, MsgTooManyAttempts)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, MsgNotFound)
}

// ServerError 存储层错误统一返回 500，具体原因只写日志
func ServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}
