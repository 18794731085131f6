/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Comcast/rulegraph/sio"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTCouplings is an sio.Couplings for an MQTT client.
type MQTTCouplings struct {
	Client               mqtt.Client
	Quiesce              uint
	SubTopics            string
	InjectTopic          bool
	TopicGrammar         bool
	DefaultOutboundTopic string
	ReplyTopic           string

	InTimeout time.Duration

	// ctx is Start's context.
	ctx      context.Context
	incoming chan interface{}
	outbound chan *sio.Result
	done     chan bool
}

func NewMQTTCouplings(args []string) (*MQTTCouplings, *flag.FlagSet) {
	var (
		// Follow mosquitto_sub command line args.

		fs = flag.NewFlagSet("mq", flag.ExitOnError)

		broker      = fs.String("h", "tcp://localhost", "Broker hostname")
		clientId    = fs.String("i", "", "Client id")
		port        = fs.Int("p", 1883, "Broker port")
		keepAlive   = fs.Int("k", 10, "Keep-alive in seconds")
		userName    = fs.String("u", "", "Username")
		password    = fs.String("P", "", "Password")
		willTopic   = fs.String("will-topic", "", "Optional will topic")
		willPayload = fs.String("will-payload", "", "Optional will message")
		willQoS     = fs.Int("will-qos", 0, "Optional will QoS")
		willRetain  = fs.Bool("will-retain", false, "Optional will retention")
		reconnect   = fs.Bool("reconnect", false, "Automatically attempt to reconnect")
		clean       = fs.Bool("c", true, "Clean session")
		quiesce     = fs.Int("quiesce", 100, "Disconnection quiescence (in milliseconds)")

		certFilename = fs.String("cert", "", "Optional cert filename")
		keyFilename  = fs.String("key", "", "Optional key filename")
		insecure     = fs.Bool("insecure", false, "Skip broker cert checking")
		caFilename   = fs.String("cafile", "", "Optional CA cert filename")
		caPath       = fs.String("capath", "", "Optional path to CA cert filename")

		subTopics = fs.String("t", "", "subscription topic(s)")

		injectTopic          = fs.Bool("inject-topic", true, "put topic in map of incoming messages")
		topicGrammar         = fs.Bool("topic-grammar", false, "check non-JSON payloads against the grammar named by the topic's last segment")
		defaultOutboundTopic = fs.String("def-outbound-topic", "verdicts", "Default out-bound verdict topic")
		replyTopic           = fs.String("reply-topic", "captain/replies", "Topic for captain replies")
		inTimeout            = fs.Duration("in-timeout", time.Second, "timeout for in-bound queuing")
	)

	if args == nil {
		return nil, fs
	}

	fs.Parse(args)

	mqtt.ERROR = log.New(os.Stderr, "mqtt.error", 0)

	opts := mqtt.NewClientOptions()

	*broker = fmt.Sprintf("%s:%d", *broker, *port)
	opts.AddBroker(*broker)
	opts.SetClientID(*clientId)
	opts.SetKeepAlive(time.Second * time.Duration(*keepAlive))

	opts.Username = *userName
	opts.Password = *password
	opts.AutoReconnect = *reconnect
	opts.CleanSession = *clean

	if *willTopic != "" {
		if *willPayload == "" {
			log.Fatal("will topic without payload")
		}
		opts.WillEnabled = true
		opts.WillTopic = *willTopic
		opts.WillPayload = []byte(*willPayload)
		opts.WillRetained = *willRetain
		opts.WillQos = byte(*willQoS)
	}

	var rootCAs *x509.CertPool
	if *caPath != "" || *caFilename != "" {
		if rootCAs, _ = x509.SystemCertPool(); rootCAs == nil {
			rootCAs = x509.NewCertPool()
			log.Printf("No system CA certs")
		}

		filename := filepath.Join(*caPath, *caFilename)
		certs, err := ioutil.ReadFile(filename)
		if err != nil {
			log.Fatalf("couldn't read '%s': %s", filename, err)
		}

		if ok := rootCAs.AppendCertsFromPEM(certs); !ok {
			log.Println("No certs appended, using system certs only")
		}
	}

	var certs []tls.Certificate
	if *keyFilename != "" {
		cert, err := tls.LoadX509KeyPair(*certFilename, *keyFilename)
		if err != nil {
			log.Fatal(err)
		}
		certs = []tls.Certificate{cert}
	}

	tlsConf := &tls.Config{
		InsecureSkipVerify: *insecure,
	}

	if rootCAs != nil {
		tlsConf.RootCAs = rootCAs
	}

	if certs != nil {
		tlsConf.Certificates = certs
	}

	opts.SetTLSConfig(tlsConf)

	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("MQTT connection lost")
	}

	io := &MQTTCouplings{
		Quiesce:              uint(*quiesce),
		SubTopics:            *subTopics,
		InjectTopic:          *injectTopic,
		TopicGrammar:         *topicGrammar,
		DefaultOutboundTopic: *defaultOutboundTopic,
		ReplyTopic:           *replyTopic,
		InTimeout:            *inTimeout,

		ctx:      context.Background(),
		incoming: make(chan interface{}),
		outbound: make(chan *sio.Result),
		done:     make(chan bool),
	}

	opts.DefaultPublishHandler = func(client mqtt.Client, msg mqtt.Message) {
		io.inHandler(io.ctx, msg.Topic(), msg.Payload())
	}

	io.Client = mqtt.NewClient(opts)

	return io, fs
}

// AsMessage turns a payload that arrived on the given topic into an
// inbound message for the checker.
func (c *MQTTCouplings) AsMessage(topic string, payload []byte) interface{} {
	var x interface{}
	if err := json.Unmarshal(payload, &x); err != nil {
		text := strings.TrimSpace(string(payload))
		if !c.TopicGrammar {
			return text
		}
		return map[string]interface{}{
			"grammar": topic[strings.LastIndex(topic, "/")+1:],
			"message": text,
		}
	}
	if m, is := x.(map[string]interface{}); is && c.InjectTopic {
		m["topic"] = topic
	}
	return x
}

// inHandler is a Paho publish handler, which is used to handle
// messages sent to us from the MQTT broker due to our subscriptions.
func (c *MQTTCouplings) inHandler(ctx context.Context, topic string, payload []byte) {
	log.Printf("incoming: %s %s\n", topic, payload)

	x := c.AsMessage(topic, payload)

	to := time.NewTimer(c.InTimeout)
	defer to.Stop()

	select {
	case <-ctx.Done():
		log.Printf("Couplings not forwarding due to ctx.Done()")
	case c.incoming <- x:
		log.Printf("Couplings forwarded incoming %s", payload)
	case <-to.C:
		log.Printf("Couplings not forwarding due to stall")
	}

}

// Start creates the MQTT session and starts publishing results.
func (c *MQTTCouplings) Start(ctx context.Context) error {
	c.ctx = ctx
	log.Printf("Attempting to connect to broker")
	if token := c.Client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("Connected to broker")

	for _, topic := range strings.Split(c.SubTopics, ",") {
		topic, qos := parseTopic(topic)
		if topic == "" {
			continue
		}
		log.Printf("Subscribing to %s (%d)", topic, qos)
		if t := c.Client.Subscribe(topic, qos, nil); t.Wait() && t.Error() != nil {
			return t.Error()
		}
	}

	go func() {
		if err := c.outLoop(ctx); err != nil {
			log.Printf("outLoop error %s", err)
		}
	}()

	log.Printf("Couplings started")

	return nil
}

// IO returns the channels that carry incoming messages and outbound
// results.
func (c *MQTTCouplings) IO(ctx context.Context) (chan interface{}, chan *sio.Result, chan bool, error) {
	return c.incoming, c.outbound, c.done, nil
}

// Publications returns the topic and payload for each message a
// Result should publish.
func (c *MQTTCouplings) Publications(r *sio.Result) ([]string, [][]byte, error) {
	var (
		topics   []string
		payloads [][]byte
	)
	for _, v := range r.Verdicts {
		js, err := json.Marshal(v)
		if err != nil {
			return nil, nil, err
		}
		topics = append(topics, c.DefaultOutboundTopic)
		payloads = append(payloads, js)
	}
	if r.Reply != nil {
		js, err := json.Marshal(r.Reply)
		if err != nil {
			return nil, nil, err
		}
		topics = append(topics, c.ReplyTopic)
		payloads = append(payloads, js)
	}
	return topics, payloads, nil
}

// outLoop forwards results from the Checker to the MQTT broker.
func (c *MQTTCouplings) outLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case r := <-c.outbound:
			topics, payloads, err := c.Publications(r)
			if err != nil {
				log.Printf("Failed to marshal %#v", r)
				continue
			}
			for i, topic := range topics {
				topic, qos := parseTopic(topic)
				token := c.Client.Publish(topic, qos, false, payloads[i])
				token.Wait()
				if err := token.Error(); err != nil {
					return fmt.Errorf("publish: %w", err)
				}
			}
		}
	}
}

// Stop terminates the MQTT session.
func (c *MQTTCouplings) Stop(ctx context.Context) error {
	log.Printf("Disconnecting")
	c.Client.Disconnect(c.Quiesce)
	close(c.done)
	return nil
}

// parseTopic can extract QoS from a topic name of the form TOPIC:QOS.
func parseTopic(s string) (string, byte) {
	topic, q, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return topic, 0
	}
	var qos byte
	if _, err := fmt.Sscanf(q, "%d", &qos); err != nil {
		return s, 0
	}
	return topic, qos
}
