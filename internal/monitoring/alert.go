package monitoring

import (
	"context"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"contactbox/backend/internal/storage"
)

// AlertLevel 告警级别
type AlertLevel string

const (
	AlertLevelWarning  AlertLevel = "warning"
	AlertLevelCritical AlertLevel = "critical"
)

// Alert 一条已触发的告警
type Alert struct {
	RuleID     string     `json:"rule_id"`
	Message    string     `json:"message"`
	Level      AlertLevel `json:"level"`
	Component  string     `json:"component"`
	Timestamp  time.Time  `json:"timestamp"`
	Resolved   bool       `json:"resolved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// AlertRule 告警规则，Condition 返回 true 表示异常
type AlertRule struct {
	ID        string
	Level     AlertLevel
	Component string
	Message   string
	Condition func() bool
	Cooldown  time.Duration

	lastTriggered time.Time
}

// AlertManager 周期评估告警规则并通过日志上报
type AlertManager struct {
	mu     sync.Mutex
	rules  []*AlertRule
	active map[string]*Alert
	logger *zap.Logger
}

// NewAlertManager 创建告警管理器
func NewAlertManager(logger *zap.Logger) *AlertManager {
	return &AlertManager{
		active: make(map[string]*Alert),
		logger: logger,
	}
}

// AddRule 注册告警规则
func (am *AlertManager) AddRule(rule *AlertRule) {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.rules = append(am.rules, rule)
}

// RegisterDefaultRules 注册默认规则：存储不可达、内存占用过高
func (am *AlertManager) RegisterDefaultRules(store storage.Store) {
	am.AddRule(&AlertRule{
		ID:        "storage_unreachable",
		Level:     AlertLevelCritical,
		Component: "storage",
		Message:   "storage backend is unreachable",
		Condition: func() bool {
			return store.Health() != nil
		},
		Cooldown: time.Minute,
	})

	am.AddRule(&AlertRule{
		ID:        "high_memory_usage",
		Level:     AlertLevelWarning,
		Component: "runtime",
		Message:   "heap allocation exceeds 1GB",
		Condition: func() bool {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			return m.Alloc > 1<<30
		},
		Cooldown: 5 * time.Minute,
	})
}

// Run 周期评估规则，直到 ctx 结束
func (am *AlertManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			am.evaluate()
		case <-ctx.Done():
			return
		}
	}
}

// evaluate 评估所有规则，触发新告警并解除已恢复的告警
func (am *AlertManager) evaluate() {
	am.mu.Lock()
	defer am.mu.Unlock()

	now := time.Now().UTC()
	for _, rule := range am.rules {
		firing := rule.Condition()
		existing, wasActive := am.active[rule.ID]

		switch {
		case firing && !wasActive:
			if now.Sub(rule.lastTriggered) < rule.Cooldown {
				continue
			}
			rule.lastTriggered = now
			alert := &Alert{
				RuleID:    rule.ID,
				Message:   rule.Message,
				Level:     rule.Level,
				Component: rule.Component,
				Timestamp: now,
			}
			am.active[rule.ID] = alert
			am.logger.Warn("alert triggered",
				zap.String("rule", rule.ID),
				zap.String("level", string(rule.Level)),
				zap.String("component", rule.Component),
				zap.String("message", rule.Message),
			)

		case !firing && wasActive:
			existing.Resolved = true
			existing.ResolvedAt = &now
			delete(am.active, rule.ID)
			am.logger.Info("alert resolved",
				zap.String("rule", rule.ID),
				zap.Duration("duration", now.Sub(existing.Timestamp)),
			)
		}
	}
}

// ActiveAlerts 返回当前未解除的告警快照
func (am *AlertManager) ActiveAlerts() []Alert {
	am.mu.Lock()
	defer am.mu.Unlock()

	out := make([]Alert, 0, len(am.active))
	for _, a := range am.active {
		out = append(out, *a)
	}
	return out
}
