package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ValueRadar/pkg/database"
	"ValueRadar/pkg/model"
	"ValueRadar/pkg/monitor"
	"ValueRadar/pkg/sentiment"
)

// Handlers API处理程序
type Handlers struct {
	metrics *database.MetricsDB
	queue   *database.QueueDB
	mapping *database.MappingDB
	svc     *sentiment.QueueService
	monitor *monitor.Monitor
}

// NewHandlers 创建新的API处理程序
func NewHandlers(
	metrics *database.MetricsDB,
	queue *database.QueueDB,
	mapping *database.MappingDB,
	svc *sentiment.QueueService,
	mon *monitor.Monitor,
) *Handlers {
	return &Handlers{
		metrics: metrics,
		queue:   queue,
		mapping: mapping,
		svc:     svc,
		monitor: mon,
	}
}

// HealthCheck 健康检查处理程序
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ReadinessCheck 就绪检查处理程序
func (h *Handlers) ReadinessCheck(c *gin.Context) {
	for _, status := range h.monitor.GetAllStatus() {
		if status.Status == "unhealthy" {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "not ready",
				"component": status.Component,
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// validCategories 合法的离群类别参数
var validCategories = map[model.OutlierCategory]bool{
	model.OutlierStrongUndervalued: true,
	model.OutlierUndervalued:       true,
	model.OutlierFairlyValued:      true,
	model.OutlierOvervalued:        true,
	model.OutlierStrongOvervalued:  true,
}

// GetMetrics 获取最新一轮打分结果，支持sector和category过滤
func (h *Handlers) GetMetrics(c *gin.Context) {
	sector := c.Query("sector")
	category := model.OutlierCategory(c.Query("category"))
	if category != "" && !validCategories[category] {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "无效的category参数: " + string(category),
		})
		return
	}

	rows, err := h.metrics.GetLatestAll(sector, category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查询打分结果失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(rows),
		"data":  rows,
	})
}

// GetMetricsBySymbol 获取单只股票的最新打分结果
func (h *Handlers) GetMetricsBySymbol(c *gin.Context) {
	symbol := c.Param("symbol")

	row, err := h.metrics.GetLatest(symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查询打分结果失败: " + err.Error(),
		})
		return
	}
	if row == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "未找到该股票的打分结果: " + symbol,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": row,
	})
}

// GetRankings 获取综合分排名
func (h *Handlers) GetRankings(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "无效的limit参数: " + v,
			})
			return
		}
		limit = n
	}
	ascending := c.Query("order") == "asc"

	rows, err := h.metrics.GetRankings(limit, ascending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查询排名失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(rows),
		"data":  rows,
	})
}

// GetQueueStats 获取情绪队列各状态的数量
func (h *Handlers) GetQueueStats(c *gin.Context) {
	stats, err := h.svc.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查询队列统计失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": stats,
	})
}

// GetBatch 获取单个批次的映射状态与队列条目
func (h *Handlers) GetBatch(c *gin.Context) {
	batchID := c.Param("id")

	counts, err := h.mapping.CountByBatch(batchID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查询批次映射失败: " + err.Error(),
		})
		return
	}
	if len(counts) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "未找到该批次: " + batchID,
		})
		return
	}

	items, err := h.queue.GetByBatch(batchID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查询批次队列条目失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batch_id": batchID,
		"mappings": counts,
		"items":    items,
	})
}

// GetSystemStatus 获取各组件健康状态
func (h *Handlers) GetSystemStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": h.monitor.GetAllStatus(),
	})
}
