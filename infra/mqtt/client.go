package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/LanderU/rmf-core/core/schedule"
	"github.com/LanderU/rmf-core/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client used
// as the reference transport between a schedule participant and the
// Database — external to the core, implemented here as one adapter among
// possible others.
type Config struct {
	Broker        string          `json:"broker"`
	ClientID      string          `json:"client_id"`
	Username      string          `json:"username"`
	Password      string          `json:"password"`
	ResponseTopic string          `json:"response_topic"`
	UseTLS        bool            `json:"use_tls"`
	ClientCert    string          `json:"client_cert"`
	ClientKey     string          `json:"client_key"`
	CABundle      string          `json:"ca_bundle"`
	AuthMethod    string          `json:"auth_method"`
	QoS           map[string]byte `json:"qos"`
	LWTTopic      string          `json:"lwt_topic"`
	LWTPayload    string          `json:"lwt_payload"`
	LWTQoS        byte            `json:"lwt_qos"`
	LWTRetain     bool            `json:"lwt_retain"`
	MaxRetries    int             `json:"max_retries"`
	BackoffMS     int             `json:"backoff_ms"`
	TLSConfig     *tls.Config     `json:"-"`
}

// pahoClient is the subset of the Paho client PahoClient depends on,
// narrowed for testability.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient implements Client using Eclipse Paho: it publishes Queries
// to a schedule participant's request topic and correlates the Patch
// response delivered on the response topic by request id.
type PahoClient struct {
	cli           pahoClient
	responseTopic string
	qos           map[string]byte

	mu         sync.Mutex
	patchChans map[string]chan schedule.Patch
	logger     logger.Logger
	lwtTopic   string
	lwtPayload string
	lwtQoS     byte
	lwtRetain  bool
	maxRetries int
	backoff    time.Duration
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the MQTT broker and subscribes to the
// response topic.
func NewPahoClient(cfg Config) (*PahoClient, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("schedule_mqtt_client")
	pc := &PahoClient{
		responseTopic: cfg.ResponseTopic,
		patchChans:    make(map[string]chan schedule.Patch),
		logger:        log,
		qos:           cfg.QoS,
		lwtTopic:      cfg.LWTTopic,
		lwtPayload:    cfg.LWTPayload,
		lwtQoS:        cfg.LWTQoS,
		lwtRetain:     cfg.LWTRetain,
		maxRetries:    cfg.MaxRetries,
		backoff:       time.Duration(cfg.BackoffMS) * time.Millisecond,
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		qos := byte(0)
		if q, ok := pc.qos["response"]; ok {
			qos = q
		}
		if token := c.Subscribe(pc.responseTopic, qos, pc.onPatch); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}
	return cfg, nil
}

type patchMessage struct {
	RequestID string         `json:"request_id"`
	Patch     schedule.Patch `json:"patch"`
}

func (p *PahoClient) onPatch(_ paho.Client, msg paho.Message) {
	var m patchMessage
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		p.logger.Errorf("failed to decode patch: %v", err)
		return
	}
	p.mu.Lock()
	ch, ok := p.patchChans[m.RequestID]
	if ok {
		select {
		case ch <- m.Patch:
		default:
		}
		p.logger.Infof("received patch for request %s", m.RequestID)
	}
	p.mu.Unlock()
}

// SendQuery publishes q to the given participant's request topic and
// returns a request id that WaitForPatch correlates the response to.
func (p *PahoClient) SendQuery(participantID string, q schedule.Query) (string, error) {
	requestID := uuid.NewString()
	request := struct {
		RequestID string         `json:"request_id"`
		Query     schedule.Query `json:"query"`
	}{RequestID: requestID, Query: q}
	payload, err := json.Marshal(request)
	if err != nil {
		return "", err
	}

	topic := fmt.Sprintf("schedule/%s/query", participantID)
	qos := byte(0)
	if q, ok := p.qos["query"]; ok {
		qos = q
	}
	if p.maxRetries <= 0 {
		p.maxRetries = 3
	}
	if p.backoff <= 0 {
		p.backoff = 100 * time.Millisecond
	}
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Infof("sent query %s to %s", requestID, topic)
			break
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		time.Sleep(p.backoff * time.Duration(1<<attempt))
	}
	if publishErr != nil {
		return "", publishErr
	}

	p.mu.Lock()
	p.patchChans[requestID] = make(chan schedule.Patch, 1)
	p.mu.Unlock()

	return requestID, nil
}

// WaitForPatch blocks until the Patch responding to requestID arrives or
// timeout elapses.
func (p *PahoClient) WaitForPatch(requestID string, timeout time.Duration) (schedule.Patch, error) {
	p.mu.Lock()
	ch := p.patchChans[requestID]
	p.mu.Unlock()
	if ch == nil {
		return schedule.Patch{}, fmt.Errorf("unknown request")
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case patch := <-ch:
		p.mu.Lock()
		delete(p.patchChans, requestID)
		p.mu.Unlock()
		return patch, nil
	case <-timer.C:
		p.mu.Lock()
		delete(p.patchChans, requestID)
		p.mu.Unlock()
		return schedule.Patch{}, fmt.Errorf("%w", ErrResponseTimeout)
	}
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
