package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	EventConnected        = "connected"
	EventBudgetAlert      = "budget_alert"
	EventGoalUpdated      = "goal_updated"
	EventDocumentUploaded = "document_uploaded"
)

// subscriberBuffer: медленный подписчик теряет события сверх буфера.
const subscriberBuffer = 16

type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// BudgetAlert отправляется, когда бюджет близок к лимиту или превышен.
type BudgetAlert struct {
	BudgetID              uuid.UUID `json:"budget_id"`
	Name                  string    `json:"name"`
	Spent                 float64   `json:"spent"`
	LimitAmount           float64   `json:"limit_amount"`
	UtilizationPercentage float64   `json:"utilization_percentage"`
	IsOverLimit           bool      `json:"is_over_limit"`
	IsNearLimit           bool      `json:"is_near_limit"`
}

type GoalUpdate struct {
	GoalID             uuid.UUID `json:"goal_id"`
	SavedAmount        float64   `json:"saved_amount"`
	ProgressPercentage float64   `json:"progress_percentage"`
	IsComplete         bool      `json:"is_complete"`
}

type DocumentUploaded struct {
	DocumentID uuid.UUID `json:"document_id"`
	FileName   string    `json:"file_name"`
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan Event]struct{}
}

// NewHub создает хаб для SSE-подписок.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[chan Event]struct{}),
	}
}

// Subscribe подписывает пользователя на события и возвращает канал и функцию отписки.
func (h *Hub) Subscribe(userID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	userSubs, ok := h.subscribers[userID]
	if !ok {
		userSubs = make(map[chan Event]struct{})
		h.subscribers[userID] = userSubs
	}
	userSubs[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			if subs, exists := h.subscribers[userID]; exists {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(h.subscribers, userID)
				}
			}
			close(ch)
		})
	}
}

// Publish отправляет событие всем подписчикам пользователя без блокировки.
func (h *Hub) Publish(userID uuid.UUID, event Event) {
	if h == nil {
		return
	}

	event.Timestamp = time.Now().UTC()

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[userID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribers возвращает число активных подписок пользователя.
func (h *Hub) Subscribers(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}

func (h *Hub) NotifyBudgetAlert(userID uuid.UUID, alert BudgetAlert) {
	h.Publish(userID, Event{Type: EventBudgetAlert, Data: alert})
}

func (h *Hub) NotifyGoalUpdated(userID uuid.UUID, update GoalUpdate) {
	h.Publish(userID, Event{Type: EventGoalUpdated, Data: update})
}

func (h *Hub) NotifyDocumentUploaded(userID uuid.UUID, doc DocumentUploaded) {
	h.Publish(userID, Event{Type: EventDocumentUploaded, Data: doc})
}
