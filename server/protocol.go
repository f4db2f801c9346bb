package main

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/salammuloh/fca00c-asteroids/galaxy"
)

// Client -> Server message types
const (
	MsgRegion   = "region"  // scan the region around a point
	MsgLaser    = "laser"   // fire a laser
	MsgCollect  = "collect" // pick up whatever occupies a cell
	MsgRegister = "register"
	MsgLogin    = "login"
	MsgAuth     = "auth" // resume with a stored token
)

// Server -> Client message types
const (
	MsgShot      = "shot"
	MsgCollected = "collected"
	MsgAuthOK    = "auth_ok"
	MsgError     = "error"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// PointMsg is a grid cell on the wire
type PointMsg struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

func (p PointMsg) Point() galaxy.Point {
	return galaxy.Point{X: p.X, Y: p.Y}
}

func toPointMsg(p galaxy.Point) PointMsg {
	return PointMsg{X: p.X, Y: p.Y}
}

// LaserMsg asks the server to trace a shot. A nil Range uses the server's
// configured laser range.
type LaserMsg struct {
	X     int32  `json:"x"`
	Y     int32  `json:"y"`
	Dir   uint32 `json:"dir"` // 0=N .. 7=NW, clockwise
	Range *int32 `json:"range,omitempty"`
}

// CredentialsMsg is sent to register or log in
type CredentialsMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthMsg resumes a session with a token from a previous login
type AuthMsg struct {
	Token string `json:"token"`
}

// AuthOKMsg confirms authentication
type AuthOKMsg struct {
	PilotID  int64  `json:"pid"`
	Username string `json:"usr"`
	Token    string `json:"token,omitempty"`
}

// CellState is one occupied cell
type CellState struct {
	X int32  `json:"x"`
	Y int32  `json:"y"`
	K string `json:"k"` // asteroid | fuel_pod
}

// RegionFrame is the full contents of one region, sent as a binary
// msgpack message over the websocket and as JSON over HTTP
type RegionFrame struct {
	CX    int32       `json:"cx"`
	CY    int32       `json:"cy"`
	Size  int32       `json:"size"`
	Cells []CellState `json:"cells"`
}

// NewRegionFrame converts a region, ordering cells by X then Y
func NewRegionFrame(r galaxy.Region) RegionFrame {
	pts := r.Elements.Points()
	cells := make([]CellState, 0, len(pts))
	for _, p := range pts {
		cells = append(cells, CellState{X: p.X, Y: p.Y, K: r.Elements[p].String()})
	}
	return RegionFrame{CX: r.Center.X, CY: r.Center.Y, Size: r.Size, Cells: cells}
}

// EncodeRegionFrame serialises a frame for a binary websocket message
func EncodeRegionFrame(f RegionFrame) ([]byte, error) {
	return msgpack.Marshal(&f)
}

// HitState is an object on a laser's path
type HitState struct {
	X    int32  `json:"x"`
	Y    int32  `json:"y"`
	K    string `json:"k"`
	Step int    `json:"step"`
}

// ShotMsg is the traced ray and what it crosses
type ShotMsg struct {
	Dir  string     `json:"dir"`
	Ray  []PointMsg `json:"ray"`
	Hits []HitState `json:"hits"`
}

// NewShotMsg converts a traced shot
func NewShotMsg(dir galaxy.Direction, s galaxy.Shot) ShotMsg {
	msg := ShotMsg{
		Dir:  dir.String(),
		Ray:  make([]PointMsg, 0, len(s.Ray)),
		Hits: make([]HitState, 0, len(s.Hits)),
	}
	for _, p := range s.Ray {
		msg.Ray = append(msg.Ray, toPointMsg(p))
	}
	for _, h := range s.Hits {
		msg.Hits = append(msg.Hits, HitState{X: h.Point.X, Y: h.Point.Y, K: h.Element.String(), Step: h.Step})
	}
	return msg
}

// CollectedMsg confirms a pickup
type CollectedMsg struct {
	X     int32  `json:"x"`
	Y     int32  `json:"y"`
	K     string `json:"k"`
	Total int    `json:"total"` // cells this pilot has collected so far
}

// ErrorMsg sends error to client
type ErrorMsg struct {
	Msg string `json:"msg"`
}
