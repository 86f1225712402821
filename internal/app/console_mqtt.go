package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/inertial_telemetry/internal/config"
	"github.com/relabs-tech/inertial_telemetry/internal/imu"
)

// FormatSample renders one sample as a console line.
func FormatSample(s imu.Sample) string {
	return fmt.Sprintf(
		"[IMU] #%-7d ax=%8.4f ay=%8.4f az=%8.4f  gx=%8.4f gy=%8.4f gz=%8.4f  temp=%6.2f°C",
		s.Seq, s.Ax, s.Ay, s.Az, s.Gx, s.Gy, s.Gz, s.TempC,
	)
}

func decodeSample(payload []byte) (imu.Sample, error) {
	var s imu.Sample
	if err := json.Unmarshal(payload, &s); err != nil {
		return imu.Sample{}, fmt.Errorf("sample unmarshal: %w", err)
	}
	return s, nil
}

// connectMQTT connects a subscriber client and subscribes it to topic.
func connectMQTT(broker, clientID, topic string, handle func(imu.Sample)) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	log.Infof("%s: connected to MQTT broker at %s", clientID, broker)

	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		s, err := decodeSample(msg.Payload())
		if err != nil {
			log.Warnf("%s: %v", clientID, err)
			return
		}
		handle(s)
	})
	token.Wait()
	if token.Error() != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("mqtt subscribe %s: %w", topic, token.Error())
	}
	log.Infof("%s: subscribed to %s", clientID, topic)
	return client, nil
}

// RunConsoleMQTT prints every published sample to out until ctx is done.
func RunConsoleMQTT(ctx context.Context, cfg *config.Config, out io.Writer) error {
	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole, cfg.TopicSample, func(s imu.Sample) {
		fmt.Fprintln(out, FormatSample(s))
	})
	if err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("console: shutting down")
	client.Disconnect(250)
	return nil
}
