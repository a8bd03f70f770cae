package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/zucenko/contagion/model"
)

type ResponseCode int

const (
	SESSION_READY ResponseCode = iota
	SESSION_NOT_FOUND
	SESSION_INVALID
)

func (h ResponseCode) ToHttp() int {
	switch h {
	case SESSION_READY:
		return http.StatusOK
	case SESSION_NOT_FOUND:
		return http.StatusNotFound
	case SESSION_INVALID:
		return http.StatusServiceUnavailable
	default:
		panic(h)
	}
}

func (ss SessionState) Name() string {
	switch ss {
	case SS_NEW:
		return "SS_NEW"
	case SS_RUN:
		return "SS_RUN"
	case SS_PAUSE:
		return "SS_PAUSE"
	case SS_OVER:
		return "SS_OVER"
	default:
		return fmt.Sprintf("n/a:%d", ss)
	}
}

func (vs ViewerState) Name() string {
	switch vs {
	case VS_NEW:
		return "NEW"
	case VS_WATCH:
		return "WATCH"
	case VS_ERR:
		return "ERR"
	case VS_GONE:
		return "GONE"
	default:
		return "N/A"
	}
}

type SessionAwaiting struct {
	ResponseCode ResponseCode
	Session      *Session
	Err          error
}

type SessionRequest struct {
	SessionAwaiting chan SessionAwaiting
}

type ViewerConnectRequest struct {
	Con      *websocket.Conn
	GameOver chan struct{}
}

type ViewerCommand struct {
	Viewer  string
	Command model.Command
}

type SessionList struct {
	Sessions []string `json:"sessions"`
}
