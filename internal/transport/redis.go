package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tonylturner/whynterir/internal/capture"
	"github.com/tonylturner/whynterir/internal/whynter"
)

// RedisOptions configures the Redis publisher.
type RedisOptions struct {
	Addr       string
	Password   string
	DB         int
	Channel    string
	HistoryKey string // list of recent frames; empty disables
	HistoryLen int64
	Timeout    time.Duration
}

// DefaultRedisOptions publishes on "whynterir:frames".
func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Addr:       "localhost:6379",
		Channel:    "whynterir:frames",
		HistoryKey: "whynterir:history",
		HistoryLen: 1000,
		Timeout:    5 * time.Second,
	}
}

// FrameMessage is the JSON published for every transmitted train.
type FrameMessage struct {
	PacketHex string `json:"packet_hex,omitempty"`
	CarrierHz int    `json:"carrier_hz"`
	Pulses    []int  `json:"pulses"`
	SentAt    string `json:"sent_at"`
}

// NewFrameMessage builds the message for a train. The packet is filled in
// when the train decodes.
func NewFrameMessage(carrierHz int, pulses []whynter.Pulse, now time.Time) FrameMessage {
	msg := FrameMessage{
		CarrierHz: carrierHz,
		Pulses:    capture.ToSigned(pulses),
		SentAt:    now.UTC().Format(time.RFC3339Nano),
	}
	if pkt, err := whynter.Decode(whynter.Train{CarrierHz: carrierHz, Pulses: pulses}); err == nil {
		msg.PacketHex = pkt.Hex()
	}
	return msg
}

// RedisPublisher is a whynter.Transmitter that publishes trains to a Redis
// channel for a networked IR bridge.
type RedisPublisher struct {
	client *redis.Client
	opts   RedisOptions
}

// NewRedisPublisher creates the client. No connection is made until the
// first command.
func NewRedisPublisher(opts RedisOptions) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &RedisPublisher{client: client, opts: opts}
}

// Ping checks the connection.
func (p *RedisPublisher) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect redis %s: %w", p.opts.Addr, err)
	}
	return nil
}

// Transmit publishes one train.
func (p *RedisPublisher) Transmit(carrierHz int, pulses []whynter.Pulse) error {
	ctx := context.Background()
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	data, err := json.Marshal(NewFrameMessage(carrierHz, pulses, time.Now()))
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	if err := p.client.Publish(ctx, p.opts.Channel, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.opts.Channel, err)
	}

	if p.opts.HistoryKey != "" {
		pipe := p.client.TxPipeline()
		pipe.LPush(ctx, p.opts.HistoryKey, data)
		if p.opts.HistoryLen > 0 {
			pipe.LTrim(ctx, p.opts.HistoryKey, 0, p.opts.HistoryLen-1)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("append history %s: %w", p.opts.HistoryKey, err)
		}
	}
	return nil
}

// Close closes the client.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

func (p *RedisPublisher) String() string {
	return fmt.Sprintf("redis://%s/%d channel %s", p.opts.Addr, p.opts.DB, p.opts.Channel)
}
