package server

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/contagion/model"
)

const requestTimeout = 200 * time.Millisecond

func NewSimulationServer(cfg Config, store *CheckpointStore) *SimulationServer {
	return &SimulationServer{
		Sessions: make(map[string]*Session),
		Requests: make(chan SessionRequest),
		Upgrader: &websocket.Upgrader{},
		Config:   cfg,
		Store:    store,
		NewSource: func() model.Source {
			seed, err := model.NewSeed()
			if err != nil {
				log.Warnf("NewSource falling back to clock seed: %v", err)
				seed = time.Now().UnixNano()
			}
			return model.NewSource(seed)
		},
		ended: make(chan string),
	}
}

func (s *SimulationServer) HandleHttpCall() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("HandleHttpCall - connection received")

		awaiting := make(chan SessionAwaiting, 1)
		select {
		case s.Requests <- SessionRequest{SessionAwaiting: awaiting}:
		case <-time.After(requestTimeout):
			log.Warn("HandleHttpCall Requests TIMEOUTED")
			w.WriteHeader(http.StatusRequestTimeout)
			return
		}

		var sa SessionAwaiting
		select {
		case sa = <-awaiting:
			switch sa.ResponseCode {
			case SESSION_READY:
			default:
				log.Warnf("HandleHttpCall no session code:%d err:%v", sa.ResponseCode, sa.Err)
				w.WriteHeader(sa.ResponseCode.ToHttp())
				return
			}
		case <-time.After(requestTimeout):
			log.Warn("HandleHttpCall SessionAwaiting TIMEOUTED")
			w.WriteHeader(http.StatusRequestTimeout)
			return
		}

		con, err := s.Upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already replied to the client.
			log.Warnf("HandleHttpCall websocket upgrade err %v", err)
			return
		}
		defer con.Close()

		gameOver := make(chan struct{})
		select {
		case sa.Session.ViewerConnectRequests <- ViewerConnectRequest{Con: con, GameOver: gameOver}:
		case <-time.After(requestTimeout):
			log.Warn("HandleHttpCall ViewerConnectRequests TIMEOUTED")
			_ = con.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "session ended"),
				time.Now().Add(time.Second))
			return
		}

		<-gameOver
		log.WithField("session", sa.Session.Id).Debug("HandleHttpCall viewer done")
	}
}

// HandleSnapshot serves the latest checkpoint of a session as a gob stream.
func (s *SimulationServer) HandleSnapshot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Store == nil {
			http.Error(w, "checkpoints disabled", http.StatusServiceUnavailable)
			return
		}
		id := way.Param(r.Context(), "id")
		snap, err := s.Store.Latest(r.Context(), id)
		if errors.Is(err, ErrCheckpointNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			log.WithField("session", id).Errorf("HandleSnapshot %v", err)
			http.Error(w, "load failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		if err := model.WriteSnapshot(w, snap); err != nil {
			log.WithField("session", id).Warnf("HandleSnapshot write %v", err)
		}
	}
}

// HandleSessions lists the ids that have a checkpoint, most recent first.
// Any of them can be used as the resume option.
func (s *SimulationServer) HandleSessions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Store == nil {
			http.Error(w, "checkpoints disabled", http.StatusServiceUnavailable)
			return
		}
		ids, err := s.Store.Sessions(r.Context())
		if err != nil {
			log.Errorf("HandleSessions %v", err)
			http.Error(w, "list failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(SessionList{Sessions: ids}); err != nil {
			log.Warnf("HandleSessions write %v", err)
		}
	}
}

func (s *SimulationServer) Loop(ctx context.Context) {
	log.Info("SimulationServer.Loop starting")
	resume := s.Config.Resume
	for {
		select {
		case <-ctx.Done():
			log.Info("SimulationServer.Loop stopping")
			// sessions watch the same ctx; wait for them to report so
			// none is left mid write
			for len(s.Sessions) > 0 {
				delete(s.Sessions, <-s.ended)
			}
			return
		case id := <-s.ended:
			log.WithField("session", id).Info("SimulationServer.Loop session ended")
			delete(s.Sessions, id)
		case req := <-s.Requests:
			// every live session accepts viewers; ended ones are already gone
			var ss *Session
			for _, candidate := range s.Sessions {
				ss = candidate
				break
			}
			if ss == nil {
				created, err := s.newSession(ctx, resume)
				if err != nil {
					log.Errorf("SimulationServer.Loop cannot create session: %v", err)
					code := SESSION_INVALID
					if errors.Is(err, ErrCheckpointNotFound) {
						code = SESSION_NOT_FOUND
					}
					req.SessionAwaiting <- SessionAwaiting{ResponseCode: code, Err: err}
					continue
				}
				resume = ""
				ss = created
				s.Sessions[ss.Id] = ss
				go ss.Loop(ctx)
			}
			req.SessionAwaiting <- SessionAwaiting{ResponseCode: SESSION_READY, Session: ss}
		}
	}
}

func (s *SimulationServer) newSession(ctx context.Context, resume string) (*Session, error) {
	ss := &Session{
		State:                 SS_NEW,
		Id:                    uuid.New().String(),
		Viewers:               make([]*Viewer, 0),
		Errors:                make(chan string),
		Commands:              make(chan ViewerCommand),
		ViewerConnectRequests: make(chan ViewerConnectRequest),
		cfg:                   s.Config,
		store:                 s.Store,
		newSource:             s.NewSource,
		ended:                 s.ended,
	}
	if resume != "" {
		if s.Store == nil {
			return nil, fmt.Errorf("resume %s: checkpoints disabled", resume)
		}
		snap, err := s.Store.Latest(ctx, resume)
		if err != nil {
			return nil, err
		}
		m, err := model.Restore(snap, s.Config.Simulation, s.NewSource())
		if err != nil {
			return nil, err
		}
		ss.Id = resume
		ss.Model = m
		log.WithFields(log.Fields{"session": resume, "generation": snap.Generation}).Info("resumed session")
		return ss, nil
	}
	m, err := model.New(s.Config.Simulation, s.NewSource())
	if err != nil {
		return nil, err
	}
	ss.Model = m
	log.WithFields(log.Fields{"session": ss.Id, "size": m.Size()}).Info("created session")
	return ss, nil
}

func (ss *Session) Loop(ctx context.Context) {
	logger := log.WithField("session", ss.Id)
	logger.Info("Session.Loop start")
	sessionsActive.Inc()
	defer sessionsActive.Dec()

	recordCounts(ss.Model.Counts())
	ticker := time.NewTicker(ss.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ss.finish(logger, "shutdown")
			return
		case vcr := <-ss.ViewerConnectRequests:
			v := ss.addViewer(vcr.Con, vcr.GameOver)
			// the clock starts with the first viewer
			if ss.State == SS_NEW {
				ss.State = SS_RUN
			}
			logger.WithField("viewer", v.Id).Info("Session.Loop viewer joined")
			ss.send(v, model.ServerMessage{
				Setup:  []model.Setup{ss.setup()},
				Frames: []model.Frame{model.FrameOf(ss.Model)},
			})
		case id := <-ss.Errors:
			logger.WithField("viewer", id).Info("Session.Loop viewer left")
			ss.dropViewer(id)
		case vc := <-ss.Commands:
			logger.WithField("viewer", vc.Viewer).Infof("Session.Loop command %s", vc.Command.Name())
			ss.apply(vc.Command)
		case <-ticker.C:
			if ss.State != SS_RUN {
				continue
			}
			// a resumed checkpoint may already be at the limit
			if ss.Model.Generation() >= uint64(ss.cfg.Frames) {
				ss.finish(logger, "complete")
				return
			}
			start := time.Now()
			ss.Model.Step()
			recordStep(time.Since(start), ss.Model.Counts())
			ss.broadcast(model.ServerMessage{Frames: []model.Frame{model.FrameOf(ss.Model)}})

			gen := ss.Model.Generation()
			if every := ss.cfg.CheckpointEvery; every > 0 && gen%uint64(every) == 0 {
				ss.checkpoint(ctx, logger)
			}
			if gen >= uint64(ss.cfg.Frames) {
				ss.finish(logger, "complete")
				return
			}
		}
	}
}

func (ss *Session) setup() model.Setup {
	return model.Setup{
		Session: ss.Id,
		Size:    ss.Model.Size(),
		Frames:  ss.cfg.Frames,
		Paused:  ss.State == SS_PAUSE,
	}
}

func (ss *Session) apply(cmd model.Command) {
	switch cmd {
	case model.CmdPause:
		if ss.State == SS_RUN {
			ss.State = SS_PAUSE
		}
	case model.CmdResume:
		if ss.State == SS_PAUSE {
			ss.State = SS_RUN
		}
	case model.CmdReset:
		m, err := model.New(ss.Model.Config(), ss.newSource())
		if err != nil {
			log.WithField("session", ss.Id).Errorf("reset failed: %v", err)
			return
		}
		ss.Model = m
		recordCounts(m.Counts())
		ss.broadcast(model.ServerMessage{
			Setup:  []model.Setup{ss.setup()},
			Frames: []model.Frame{model.FrameOf(m)},
		})
		return
	default:
		log.WithField("session", ss.Id).Warnf("unknown command %d", cmd)
		return
	}
	ss.broadcast(model.ServerMessage{Setup: []model.Setup{ss.setup()}})
}

func (ss *Session) checkpoint(ctx context.Context, logger *log.Entry) {
	if ss.store == nil {
		return
	}
	err := ss.store.Save(ctx, ss.Id, ss.Model.Snapshot())
	recordCheckpoint(err)
	if err != nil {
		logger.Warnf("checkpoint failed: %v", err)
	}
}

// finish tells every viewer why the session ended and releases them.
func (ss *Session) finish(logger *log.Entry, reason string) {
	ss.State = SS_OVER
	logger.WithFields(log.Fields{
		"generation": ss.Model.Generation(),
		"reason":     reason,
	}).Info("Session.Loop over")
	if reason != "shutdown" {
		ss.checkpoint(context.Background(), logger)
	}
	ss.broadcast(model.ServerMessage{Over: []model.Over{{
		Generation: ss.Model.Generation(),
		Reason:     reason,
	}}})
	for _, v := range ss.Viewers {
		v.State = VS_GONE
		close(v.done)
		viewersConnected.Dec()
	}
	ss.Viewers = nil
	ss.ended <- ss.Id
}

func (ss *Session) broadcast(mes model.ServerMessage) {
	for _, v := range ss.Viewers {
		ss.send(v, mes)
	}
}

// send never blocks the session; a viewer that cannot keep up loses frames.
func (ss *Session) send(v *Viewer, mes model.ServerMessage) {
	select {
	case v.MessagesToSend <- mes:
	default:
		framesDropped.Inc()
		log.WithField("viewer", v.Id).Warn("Session.send MessagesToSend FULL, dropping")
	}
}

func (ss *Session) addViewer(conn *websocket.Conn, gameOver chan struct{}) *Viewer {
	v := &Viewer{
		State:          VS_WATCH,
		Id:             uuid.New().String(),
		Session:        ss,
		Conn:           conn,
		GameOver:       gameOver,
		MessagesToSend: make(chan model.ServerMessage, 16),
		done:           make(chan struct{}),
	}
	conn.SetPingHandler(
		func(message string) error {
			err := conn.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(time.Second))
			v.DebugLastPing = time.Now()
			v.DebugPings++
			if err == websocket.ErrCloseSent {
				return nil
			} else if e, ok := err.(net.Error); ok && e.Timeout() {
				return nil
			}
			return err
		})
	go v.LoopChannelRead()
	go v.LoopChannelWrite()
	ss.Viewers = append(ss.Viewers, v)
	viewersConnected.Inc()
	return v
}

func (ss *Session) dropViewer(id string) {
	for i, v := range ss.Viewers {
		if v.Id == id {
			v.State = VS_ERR
			close(v.done)
			ss.Viewers = append(ss.Viewers[:i], ss.Viewers[i+1:]...)
			viewersConnected.Dec()
			return
		}
	}
}

// fail reports the viewer as broken unless the session already dropped it.
func (v *Viewer) fail() {
	select {
	case v.Session.Errors <- v.Id:
	case <-v.done:
	}
}

func (v *Viewer) LoopChannelRead() {
	logger := log.WithField("viewer", v.Id)
	logger.Debug("LoopChannelRead STARTED")
	for {
		_, r, err := v.Conn.NextReader()
		if err != nil {
			logger.Debugf("LoopChannelRead err reading message from Conn %v", err)
			v.fail()
			break
		}
		cm := &model.ClientMessage{}
		if err := gob.NewDecoder(r).Decode(cm); err != nil {
			logger.Warnf("LoopChannelRead cant decode %v", err)
			v.fail()
			break
		}
		v.DebugLastMessage = time.Now()
		v.DebugInMessages++

		select {
		case v.Session.Commands <- ViewerCommand{Viewer: v.Id, Command: cm.Command}:
		case <-v.done:
			logger.Debug("LoopChannelRead viewer dropped")
			return
		}
	}
	logger.Debug("LoopChannelRead ENDED")
}

// LoopChannelWrite is the only writer of data frames on the connection. It
// flushes whatever is queued once the viewer is dropped, then releases the
// HTTP handler.
func (v *Viewer) LoopChannelWrite() {
	logger := log.WithField("viewer", v.Id)
	logger.Debug("LoopChannelWrite STARTED")
	defer close(v.GameOver)
loop:
	for {
		select {
		case mes := <-v.MessagesToSend:
			if err := v.write(mes); err != nil {
				logger.Warnf("LoopChannelWrite %v", err)
				v.fail()
				break loop
			}
		case <-v.done:
			for {
				select {
				case mes := <-v.MessagesToSend:
					if err := v.write(mes); err != nil {
						break loop
					}
				default:
					_ = v.Conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session over"),
						time.Now().Add(time.Second))
					break loop
				}
			}
		}
	}
	logger.Debug("LoopChannelWrite ENDED")
}

func (v *Viewer) write(mes model.ServerMessage) error {
	w, err := v.Conn.NextWriter(websocket.BinaryMessage)
	if err != nil {
		return fmt.Errorf("cant get writer: %w", err)
	}
	if err := gob.NewEncoder(w).Encode(mes); err != nil {
		return fmt.Errorf("cant encode: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("cant flush: %w", err)
	}
	v.DebugOutMessages++
	return nil
}
