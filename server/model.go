package server

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/zucenko/contagion/model"
)

type SimulationServer struct {
	Sessions map[string]*Session
	Requests chan SessionRequest
	Upgrader *websocket.Upgrader
	Config   Config
	Store    *CheckpointStore

	// NewSource hands every new or reset model its draw source.
	NewSource func() model.Source

	ended chan string
}

type SessionState int

const (
	SS_NEW SessionState = iota
	SS_RUN
	SS_PAUSE
	SS_OVER
)

type Session struct {
	State                 SessionState
	Id                    string
	Model                 *model.Model
	Viewers               []*Viewer
	Errors                chan string
	Commands              chan ViewerCommand
	ViewerConnectRequests chan ViewerConnectRequest

	cfg       Config
	store     *CheckpointStore
	newSource func() model.Source
	ended     chan<- string
}

type ViewerState int

const (
	VS_NEW ViewerState = iota + 1
	VS_WATCH
	VS_ERR
	VS_GONE
)

type Viewer struct {
	State    ViewerState
	Id       string
	Session  *Session
	Conn     *websocket.Conn
	GameOver chan struct{}

	MessagesToSend chan model.ServerMessage
	done           chan struct{}

	DebugInMessages  int
	DebugOutMessages int
	DebugLastMessage time.Time
	DebugLastPing    time.Time
	DebugPings       int
}
