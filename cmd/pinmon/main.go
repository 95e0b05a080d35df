package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/pinsh/pkg/comm/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/pinsh/"
)

func init() {
	if val := os.Getenv("PINSH_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q.Sub("+"+mqtt.TopicEvent, mqtt.Handler(func(topic string, payload []byte) {
		device := strings.TrimSuffix(topic, mqtt.TopicEvent)
		rec, err := mqtt.DecodeEvent(payload)
		if err != nil {
			log.Printf("%s: bad event: %v", device, err)
			return
		}
		status := "ok"
		if rec.Skipped {
			status = "skipped"
		} else if rec.Status != 0 {
			status = "error"
		}
		log.Printf("%s: %q [%s] %s", device, rec.Line, rec.Command, status)
	}))
	if err = q.Connect(); err != nil {
		log.Fatalln(err)
	}
	<-(chan struct{})(nil)
}
