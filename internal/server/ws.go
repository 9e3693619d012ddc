package server

import (
	"errors"
	"net/http"

	"jamdash/internal/models"
	"jamdash/internal/progress"
	"jamdash/internal/services/merge"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	// Cross-origin browsers are the expected clients.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleProgressStream is the subscription endpoint: it upgrades to a
// WebSocket and pushes one JSON progress event per frame until the task
// reaches a terminal state, then closes. Attaching to an unknown or already
// finished task yields a single terminal frame, never a hanging stream, and
// a client disconnecting has no effect on the task.
func (s *Server) handleProgressStream(c echo.Context) error {
	taskID := c.Param("task_id")

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Attach before any store lookup so no event published in between is
	// missed. The hub delivers the current snapshot first.
	sub := s.hub.Attach(taskID)
	defer s.hub.Detach(sub)

	if _, known := s.hub.Snapshot(taskID); !known {
		// The hub has no state for this id (unknown task, or pruned after
		// completion): answer from the task store with a single event.
		ev := s.storeSnapshot(taskID)
		_ = conn.WriteJSON(ev)
		if ev.Terminal() {
			s.sendClose(conn)
			return nil
		}
	}

	// Watch for the client going away so the subscription is released even
	// while no events are flowing.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.hub.Detach(sub)
				return
			}
		}
	}()

	for ev := range sub.C {
		if err := conn.WriteJSON(ev); err != nil {
			log.WithField("task_id", taskID).Debugf("Progress stream write failed: %v", err)
			return nil
		}
		if ev.Terminal() {
			break
		}
	}

	s.sendClose(conn)
	return nil
}

// storeSnapshot builds an event for a task the hub no longer knows about.
// An unknown id is reported as "no task in progress" rather than an error.
func (s *Server) storeSnapshot(taskID string) progress.Event {
	task, err := s.merge.GetTask(taskID)
	if errors.Is(err, merge.ErrTaskNotFound) {
		return progress.Event{
			Progress: 1,
			Status:   models.TaskStatusCompleted,
			Total:    0,
			Message:  "No task in progress",
		}
	}
	if err != nil {
		return progress.Event{
			Progress: 0,
			Status:   models.TaskStatusFailed,
			Total:    0,
			Message:  err.Error(),
		}
	}
	return progress.Event{
		Progress: task.Fraction(),
		Status:   task.Status,
		Total:    task.Total,
		Message:  task.Message,
	}
}

func (s *Server) sendClose(conn *websocket.Conn) {
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
