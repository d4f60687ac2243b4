package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/ingest"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/protocol/atu"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage/models"
)

// Ingester 由 *ingest.Service 实现
type Ingester interface {
	HandleUplink(ctx context.Context, up ingest.Uplink, source string) (*models.Pin, error)
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}

// PinView 对外展示的定位点，附带格式化日期
type PinView struct {
	models.Pin
	Date string `json:"date"`
}

func viewOf(p models.Pin) PinView {
	return PinView{Pin: p, Date: p.Date()}
}

func viewsOf(pins []models.Pin) []PinView {
	out := make([]PinView, 0, len(pins))
	for _, p := range pins {
		out = append(out, viewOf(p))
	}
	return out
}

// PinsHandler 定位点 API
type PinsHandler struct {
	repo   storage.PinRepo
	ingest Ingester
	logger *zap.Logger
}

// NewPinsHandler 创建定位点处理器
func NewPinsHandler(repo storage.PinRepo, ing Ingester, logger *zap.Logger) *PinsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PinsHandler{repo: repo, ingest: ing, logger: logger}
}

// ListPins 查询定位点
// @Summary 查询定位点
// @Description 按时间倒序返回定位点；latest=true 时每只羊仅返回最新一条
// @Tags 定位点
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "每页数量(0为全部)"
// @Param offset query int false "偏移量(默认0)"
// @Param latest query bool false "每只羊仅最新一条"
// @Success 200 {array} PinView
// @Router /api/pins [get]
func (h *PinsHandler) ListPins(c *gin.Context) {
	ctx := c.Request.Context()
	if latest, _ := strconv.ParseBool(c.Query("latest")); latest {
		pins, err := h.repo.LatestPins(ctx)
		if err != nil {
			h.internalError(c, "latest pins", err)
			return
		}
		c.JSON(http.StatusOK, viewsOf(pins))
		return
	}

	limit, offset := 0, 0
	if v := c.Query("limit"); v != "" {
		if vv, e := strconv.Atoi(v); e == nil && vv >= 0 {
			limit = vv
		}
	}
	if v := c.Query("offset"); v != "" {
		if vv, e := strconv.Atoi(v); e == nil && vv >= 0 {
			offset = vv
		}
	}
	pins, err := h.repo.ListPins(ctx, limit, offset)
	if err != nil {
		h.internalError(c, "list pins", err)
		return
	}
	c.JSON(http.StatusOK, viewsOf(pins))
}

// AddPin 接收上行事件并入库
// @Summary 接收网络服务器上行事件并入库
// @Description data（base64 原始帧）优先于 objectJSON
// @Tags 定位点
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body ingest.Uplink true "上行事件"
// @Success 201 {object} PinView
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/pins/addPin [post]
func (h *PinsHandler) AddPin(c *gin.Context) {
	var up ingest.Uplink
	if err := c.ShouldBindJSON(&up); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	pin, err := h.ingest.HandleUplink(c.Request.Context(), up, ingest.SourceHTTP)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, viewOf(*pin))
	case errors.Is(err, ingest.ErrDuplicate):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case isDecodeError(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		h.internalError(c, "add pin", err)
	}
}

// GetSheepPin 查询羊只最新位置
// @Summary 查询羊只最新位置
// @Tags 定位点
// @Produce json
// @Security ApiKeyAuth
// @Param sheepId path string true "羊只名称"
// @Success 200 {object} PinView
// @Failure 404 {object} ErrorResponse
// @Router /api/pins/{sheepId} [get]
func (h *PinsHandler) GetSheepPin(c *gin.Context) {
	pin, err := h.repo.GetLatestPinBySheep(c.Request.Context(), c.Param("sheepId"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no pins for sheep"})
		return
	}
	if err != nil {
		h.internalError(c, "get sheep pin", err)
		return
	}
	c.JSON(http.StatusOK, viewOf(*pin))
}

// RemovePin 删除定位点
// @Summary 删除定位点
// @Tags 定位点
// @Produce json
// @Security ApiKeyAuth
// @Param genId path string true "定位点ID"
// @Success 200 {object} PinView
// @Failure 404 {object} ErrorResponse
// @Router /api/pins/removePin/{genId} [delete]
func (h *PinsHandler) RemovePin(c *gin.Context) {
	pin, err := h.repo.DeletePinByGenID(c.Request.Context(), c.Param("genId"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "pin not found"})
		return
	}
	if err != nil {
		h.internalError(c, "remove pin", err)
		return
	}
	h.logger.Info("pin removed", zap.String("gen_id", pin.GenID), zap.String("sheep", pin.SheepID))
	c.JSON(http.StatusOK, viewOf(*pin))
}

func (h *PinsHandler) internalError(c *gin.Context, op string, err error) {
	h.logger.Error(op+" failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// isDecodeError 客户端数据问题（400）而非服务端故障
func isDecodeError(err error) bool {
	return errors.Is(err, atu.ErrFrameTooShort) ||
		errors.Is(err, ingest.ErrNoPayload) ||
		errors.Is(err, ingest.ErrBadData) ||
		errors.Is(err, ingest.ErrBadObject)
}
