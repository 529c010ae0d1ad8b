package redbone

/*------------------------------------------------------------------
 *
 * Purpose:	Optional MQTT record publisher.
 *
 * Description:	Mirrors every output record to a broker topic as the
 *		same line-delimited JSON the stdout sink writes, so
 *		downstream consumers need only one parser.
 *
 *------------------------------------------------------------------*/

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const mqttConnectTimeout = 10 * time.Second

type mqttWriter struct {
	client mqtt.Client
	topic  string
}

func generateClientID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return "redbone_" + hex.EncodeToString(b)
}

// NewMQTTWriter connects to broker and returns a sink publishing every
// record to topic at QoS 0.
func NewMQTTWriter(broker, topic string) (RecordWriter, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(generateClientID())
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(mqttConnectTimeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("connecting to MQTT broker %s: timeout", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to MQTT broker %s: %w", broker, err)
	}

	return &mqttWriter{client: client, topic: topic}, nil
}

func (m *mqttWriter) WriteRecord(r *Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	token := m.client.Publish(m.topic, 0, false, data)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", m.topic, err)
	}
	return nil
}

// Close disconnects from the broker, allowing a short drain.
func (m *mqttWriter) Close() {
	m.client.Disconnect(250)
}
