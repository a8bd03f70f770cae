package main

import (
	"encoding/gob"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/contagion/model"
)

// Link is the viewer's websocket to the simulation server.
type Link struct {
	conn     *websocket.Conn
	Incoming chan model.ServerMessage
	writeMu  sync.Mutex
}

func Dial(url string) (*Link, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	l := &Link{conn: conn, Incoming: make(chan model.ServerMessage, 64)}
	go l.loopRead()
	return l, nil
}

func (l *Link) loopRead() {
	defer close(l.Incoming)
	for {
		_, r, err := l.conn.NextReader()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Warnf("Link.loopRead %v", err)
			}
			return
		}
		var mes model.ServerMessage
		if err := gob.NewDecoder(r).Decode(&mes); err != nil {
			log.Warnf("Link.loopRead cant decode %v", err)
			return
		}
		l.Incoming <- mes
	}
}

func (l *Link) Send(cmd model.Command) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	w, err := l.conn.NextWriter(websocket.BinaryMessage)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(w).Encode(model.ClientMessage{Command: cmd}); err != nil {
		return err
	}
	return w.Close()
}

func (l *Link) Close() error {
	return l.conn.Close()
}
