// Package arp performs one address-resolution exchange over a
// registered interface.
package arp

import (
	"context"
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/frozenpine/nic4go"
	"github.com/frozenpine/nic4go/cache"
	nicerr "github.com/frozenpine/nic4go/errors"
	"github.com/frozenpine/nic4go/nic"
)

const (
	defaultReplyTimeout = time.Second
	defaultPollDelay    = 50 * time.Microsecond
)

// ErrReplyTimeout no valid reply arrived inside the wait bound
var ErrReplyTimeout = nicerr.NewTimeout("no valid arp reply arrived")

// Resolver ties framing, registry and driver together
type Resolver struct {
	registry *nic.Registry

	replyTimeout time.Duration
	pollDelay    time.Duration

	// rolling record of frames that failed reply validation
	rejected *cache.FrameCache
}

func NewResolver(registry *nic.Registry) *Resolver {
	return &Resolver{
		registry:     registry,
		replyTimeout: defaultReplyTimeout,
		pollDelay:    defaultPollDelay,
		rejected:     cache.NewFrameCache(),
	}
}

// SetReplyTimeout adjusts the reply wait bound applied when the
// context has no deadline of its own
func (r *Resolver) SetReplyTimeout(d time.Duration) {
	if d > 0 {
		r.replyTimeout = d
	}
}

// Rejected returns the accumulated bytes of frames discarded by
// reply validation since the last resolution started
func (r *Resolver) Rejected() []byte {
	return r.rejected.Bytes()
}

// Resolve sends one broadcast request for ipadd over the named
// interface and waits for a matching reply. Frames that fail
// validation are dropped silently, they simply were not for us.
// The wait is bounded by the context deadline, or the resolver's
// reply timeout when none is set.
func (r *Resolver) Resolve(ctx context.Context, intrfc, ipadd string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	handle, err := r.registry.Lookup(intrfc)
	if err != nil {
		return "", errors.Wrapf(err, "interface %s", intrfc)
	}

	frm, err := nic4go.BuildRequest(handle.MAC, ipadd)
	if err != nil {
		return "", errors.Wrapf(err, "build request for %s failed", ipadd)
	}

	wire := make([]byte, nic4go.ARPFrameWireSize)
	if _, err = frm.Marshal(wire); err != nil {
		return "", err
	}

	if err = handle.Sender.Send(wire); err != nil {
		return "", errors.Wrap(err, "send request failed")
	}

	if _, bounded := ctx.Deadline(); !bounded {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.replyTimeout)
		defer cancel()
	}

	// drop the reject record of the previous exchange
	r.rejected.Rotate(len(r.rejected.Bytes()), nil)

	for {
		select {
		case <-ctx.Done():
			return "", nicerr.Join(ErrReplyTimeout, ctx.Err())
		default:
		}

		frame, err := handle.Receiver.Recv()
		if err != nil {
			if nicerr.Is(err, nicerr.ErrRecoverable) {
				time.Sleep(r.pollDelay)
				continue
			}

			return "", errors.Wrap(err, "receive failed")
		}

		mac, err := r.inspect(frame)

		if rel, ok := handle.Receiver.(nic.Releaser); ok {
			rel.Release(frame)
		}

		if err != nil {
			continue
		}

		return mac, nil
	}
}

func (r *Resolver) inspect(frame []byte) (string, error) {
	var reply nic4go.ARPFrame

	if err := reply.Unmarshal(frame); err != nil {
		r.rejected.Merge(frame)
		return "", err
	}

	mac, err := nic4go.ValidateReply(&reply)
	if err != nil {
		r.rejected.Merge(frame)
		log.Printf("arp: dropping frame from %s: %v", reply.SrcMAC, err)
		return "", err
	}

	return mac, nil
}
