package mqtt

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/robotalks/pinsh/pkg/console"
)

// EventPublisher implements console.Observer by publishing each
// command record to DEVICE/event.
type EventPublisher struct {
	Queue  *Queue
	Device string
}

// CommandDone implements console.Observer.
func (p *EventPublisher) CommandDone(rec console.Record) {
	payload, err := EncodeEvent(rec)
	if err != nil {
		glog.Errorf("encode event: %v", err)
		return
	}
	p.Queue.Pub(p.Device+TopicEvent, payload)
}

// EncodeEvent serializes a Record as a protobuf Struct.
func EncodeEvent(rec console.Record) ([]byte, error) {
	return proto.Marshal(&structpb.Struct{
		Fields: map[string]*structpb.Value{
			"line":    stringValue(rec.Line),
			"command": stringValue(rec.Command),
			"status":  {Kind: &structpb.Value_NumberValue{NumberValue: float64(rec.Status)}},
			"skipped": {Kind: &structpb.Value_BoolValue{BoolValue: rec.Skipped}},
		},
	})
}

// DecodeEvent parses a payload produced by EncodeEvent.
func DecodeEvent(payload []byte) (rec console.Record, err error) {
	var s structpb.Struct
	if err = proto.Unmarshal(payload, &s); err != nil {
		return
	}
	line, ok := s.Fields["line"]
	if !ok {
		return rec, fmt.Errorf("event without line")
	}
	rec.Line = line.GetStringValue()
	rec.Command = s.Fields["command"].GetStringValue()
	rec.Status = console.Status(s.Fields["status"].GetNumberValue())
	rec.Skipped = s.Fields["skipped"].GetBoolValue()
	return
}

func stringValue(s string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: s}}
}
