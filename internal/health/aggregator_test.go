package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockChecker 模拟检查器
type mockChecker struct {
	name   string
	status Status
}

func (m *mockChecker) Name() string {
	return m.name
}

func (m *mockChecker) Check(ctx context.Context) CheckResult {
	return CheckResult{
		Status:  m.status,
		Message: "mock",
		Latency: time.Millisecond,
	}
}

type fakeConn bool

func (f fakeConn) IsConnected() bool { return bool(f) }

func TestAggregator(t *testing.T) {
	t.Run("全部健康", func(t *testing.T) {
		agg := NewAggregator(
			&mockChecker{"database", StatusHealthy},
			&mockChecker{"redis", StatusHealthy},
		)
		assert.Equal(t, StatusHealthy, agg.OverallStatus(context.Background()))
		assert.True(t, agg.Ready(context.Background()))
	})

	t.Run("部分降级", func(t *testing.T) {
		agg := NewAggregator(
			&mockChecker{"database", StatusHealthy},
			NewMQTTChecker(fakeConn(false)),
		)
		assert.Equal(t, StatusDegraded, agg.OverallStatus(context.Background()))
		// 降级状态仍然Ready
		assert.True(t, agg.Ready(context.Background()))
	})

	t.Run("部分不健康", func(t *testing.T) {
		agg := NewAggregator(
			&mockChecker{"database", StatusUnhealthy},
			&mockChecker{"redis", StatusDegraded},
		)
		assert.Equal(t, StatusUnhealthy, agg.OverallStatus(context.Background()))
		assert.False(t, agg.Ready(context.Background()))
	})

	t.Run("CheckAll并发执行", func(t *testing.T) {
		agg := NewAggregator(
			&mockChecker{"check1", StatusHealthy},
			&mockChecker{"check2", StatusHealthy},
			NewMQTTChecker(fakeConn(true)),
		)
		results := agg.CheckAll(context.Background())
		require.Len(t, results, 3)
		for name, result := range results {
			assert.Equal(t, StatusHealthy, result.Status, name)
		}
	})

	t.Run("动态添加检查器", func(t *testing.T) {
		agg := NewAggregator(&mockChecker{"initial", StatusHealthy})
		agg.AddChecker(NewFuncChecker("flock", func(context.Context) CheckResult {
			return CheckResult{Status: StatusHealthy}
		}))
		assert.Len(t, agg.CheckAll(context.Background()), 2)
	})

	t.Run("检查器超时", func(t *testing.T) {
		agg := NewAggregator(NewFuncChecker("slow", func(ctx context.Context) CheckResult {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			return CheckResult{Status: StatusHealthy}
		}))
		agg.CheckAll(context.Background())
	})
}

func TestHTTPRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	get := func(r http.Handler, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	healthy := gin.New()
	RegisterHTTPRoutes(healthy, NewAggregator(&mockChecker{"database", StatusHealthy}))
	assert.Equal(t, http.StatusOK, get(healthy, "/health/ready").Code)
	assert.Equal(t, http.StatusOK, get(healthy, "/health/live").Code)

	w := get(healthy, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	var report HealthReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, StatusHealthy, report.Status)
	assert.Contains(t, report.Checks, "database")

	sick := gin.New()
	RegisterHTTPRoutes(sick, NewAggregator(&mockChecker{"database", StatusUnhealthy}))
	assert.Equal(t, http.StatusServiceUnavailable, get(sick, "/health/ready").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(sick, "/health").Code)
}
