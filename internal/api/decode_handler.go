package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/ingest"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/protocol/atu"
)

// DecodeRequest 调试解码请求
type DecodeRequest struct {
	Payload  string `json:"payload" binding:"required"`
	Encoding string `json:"encoding"` // hex | base64，空则自动识别
	FPort    int    `json:"fPort"`
	Report   bool   `json:"report"` // 同时返回全通道解码
}

// DecodeResponse 调试解码结果
type DecodeResponse struct {
	Telemetry *atu.Telemetry    `json:"telemetry"`
	Report    *atu.SensorReport `json:"report,omitempty"`
}

// Decode 解码一帧（不入库）
// @Summary 解码一帧 ATU 上行
// @Tags 调试
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body DecodeRequest true "帧内容"
// @Success 200 {object} DecodeResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/decode [post]
func Decode(c *gin.Context) {
	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	frame, err := ingest.ParsePayload(req.Payload, req.Encoding)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	tel, err := atu.DecodeUplink(req.FPort, frame, nil)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, atu.ErrFrameTooShort) {
			status = http.StatusBadRequest
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}
	resp := DecodeResponse{Telemetry: tel}
	if req.Report {
		// 长度已由 DecodeUplink 校验
		resp.Report, _ = atu.DecodeReport(frame)
	}
	c.JSON(http.StatusOK, resp)
}
