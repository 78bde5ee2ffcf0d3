package bus

import (
    "context"
    "encoding/json"

    "github.com/redis/go-redis/v9"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/live-event-ticketing/internal/repository"
)

// RedisBus implements the notification bus over Redis pub/sub.  Each
// snapshot is published to the seat's event topic and its section topic,
// so viewers can subscribe at either granularity.  Redis pub/sub gives
// at-least-once-ish fan-out with no ordering guarantee across channels,
// which is exactly the contract the snapshots are designed for.
type RedisBus struct {
    rdb *redis.Client
}

// NewRedisBus wraps an existing Redis client.  The caller owns the client
// lifecycle.
func NewRedisBus(rdb *redis.Client) *RedisBus {
    return &RedisBus{rdb: rdb}
}

// PublishSeat serializes the snapshot and publishes it to both topics.
// Publish failures are logged and returned but callers on the booking
// path deliberately ignore them: a missed notification only delays a
// viewer until its next refresh, while failing the booking would undo a
// committed sale.
func (b *RedisBus) PublishSeat(ctx context.Context, snap repository.SeatSnapshot) error {
    body, err := json.Marshal(snap)
    if err != nil {
        return err
    }
    if err := b.rdb.Publish(ctx, EventTopic(snap.EventID), body).Err(); err != nil {
        logrus.WithError(err).WithField("seat_id", snap.SeatID).Warn("seat-bus: event topic publish failed")
        return err
    }
    if err := b.rdb.Publish(ctx, SectionTopic(snap.SectionID), body).Err(); err != nil {
        logrus.WithError(err).WithField("seat_id", snap.SeatID).Warn("seat-bus: section topic publish failed")
        return err
    }
    return nil
}

// Subscribe opens a subscription on the given topic and returns a channel
// of decoded snapshots.  The channel is buffered; when a consumer falls
// behind, messages are dropped rather than blocking the bus, because a
// snapshot stream is self-healing: the next snapshot for a seat
// supersedes anything missed.  The subscription ends when ctx is
// cancelled, closing the returned channel.
func (b *RedisBus) Subscribe(ctx context.Context, topic string) <-chan repository.SeatSnapshot {
    sub := b.rdb.Subscribe(ctx, topic)
    out := make(chan repository.SeatSnapshot, 64)
    go func() {
        defer close(out)
        defer func() { _ = sub.Close() }()
        ch := sub.Channel()
        for {
            select {
            case <-ctx.Done():
                return
            case msg, ok := <-ch:
                if !ok {
                    return
                }
                var snap repository.SeatSnapshot
                if err := json.Unmarshal([]byte(msg.Payload), &snap); err != nil {
                    logrus.WithError(err).Warn("seat-bus: dropping undecodable message")
                    continue
                }
                select {
                case out <- snap:
                default:
                    // Consumer is not keeping up; drop and move on.
                }
            }
        }
    }()
    return out
}
