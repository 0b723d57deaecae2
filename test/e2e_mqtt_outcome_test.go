package test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cscx-ai/meetopt/app"
	"github.com/cscx-ai/meetopt/config"
	"github.com/cscx-ai/meetopt/core/engine"
	"github.com/cscx-ai/meetopt/core/events"
	"github.com/cscx-ai/meetopt/test/util"
)

// TestOutcomeOverMQTT drives the full loop: generate a draft request, publish
// its outcome to the broker and observe the engine folding it in.
func TestOutcomeOverMQTT(t *testing.T) {
	if !util.DockerAvailable() {
		t.Skip("docker not installed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	broker, cleanup, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("mosquitto not available: %v", err)
	}
	defer cleanup()

	cfg := config.Default()
	cfg.Store.Backend = "memory"
	cfg.MQTT.Enabled = true
	cfg.MQTT.Broker = broker
	cfg.MQTT.ClientID = "e2e-engine"

	svc, err := app.New(cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = svc.Run(runCtx) }()

	req, err := svc.Engine.GenerateOptimizedRequest(ctx, engine.GenerateInput{
		CustomerID:    "cust-e2e",
		CustomerName:  "Acme Corp",
		StakeholderID: "stake-e2e",
	})
	require.NoError(t, err)
	require.NotEmpty(t, req.ProposedTimes)

	sub := svc.Bus.Subscribe()

	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("e2e-publisher")
	cli := paho.NewClient(opts)
	token := cli.Connect()
	token.Wait()
	require.NoError(t, token.Error())
	defer cli.Disconnect(100)

	payload, err := json.Marshal(map[string]any{
		"request_id":             req.ID,
		"outcome":                "accepted",
		"response_latency_hours": 2.5,
	})
	require.NoError(t, err)

	// The source subscribes asynchronously; republish until the outcome lands.
	topic := "meetings/" + req.ID + "/outcome"
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case ev := <-sub:
			rec, ok := ev.(events.OutcomeRecorded)
			if !ok {
				continue
			}
			assert.Equal(t, req.ID, rec.RequestID)
			assert.Equal(t, "cust-e2e", rec.CustomerID)
			assert.Equal(t, 1, rec.TotalMeetings)
			return
		case <-ticker.C:
			if tok := cli.Publish(topic, 1, false, payload); tok.Wait() && tok.Error() != nil {
				t.Fatalf("publish: %v", tok.Error())
			}
		case <-ctx.Done():
			t.Fatal("timed out waiting for the outcome to be recorded")
		}
	}
}
