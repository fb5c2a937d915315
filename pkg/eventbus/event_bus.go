package eventbus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/labdesk/pkg/serrors"
)

// Handler is a func taking an event pointer, optionally preceded by a context.Context,
// and returning nothing or an error.
type Handler any

type EventBus interface {
	Publish(ctx context.Context, event any) error
	Subscribe(handler Handler) (unsubscribe func())
	Clear()
	SubscribersCount() int
}

var (
	ErrNoSubscribers        = serrors.NewError("EVENTBUS_NO_SUBSCRIBERS", "no matching subscribers", "")
	ErrInvalidHandlerReturn = serrors.NewError("EVENTBUS_INVALID_HANDLER_RETURN", "invalid handler return signature", "")
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

type subscriber struct {
	id      uint64
	handler reflect.Value
	wantCtx bool
}

type bus struct {
	log *logrus.Logger

	mu     sync.RWMutex
	nextID uint64
	subs   []subscriber
}

func New(log *logrus.Logger) EventBus {
	return &bus{log: log}
}

// MatchSignature reports whether handler can receive event.
func MatchSignature(handler Handler, event any) bool {
	t := reflect.TypeOf(handler)
	if t == nil || t.Kind() != reflect.Func {
		return false
	}
	in := t.NumIn()
	offset := 0
	if in == 2 && t.In(0) == contextType {
		offset = 1
	}
	if in-offset != 1 {
		return false
	}

	paramType := t.In(offset)
	if event == nil {
		return paramType.Kind() == reflect.Interface || paramType.Kind() == reflect.Ptr
	}
	argType := reflect.TypeOf(event)
	if paramType.Kind() == reflect.Interface {
		return argType.Implements(paramType)
	}
	return argType.AssignableTo(paramType)
}

func (b *bus) Subscribe(handler Handler) func() {
	t := reflect.TypeOf(handler)
	if t == nil || t.Kind() != reflect.Func {
		panic("handler must be a function")
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{
		id:      id,
		handler: reflect.ValueOf(handler),
		wantCtx: t.NumIn() == 2 && t.In(0) == contextType,
	})
	b.mu.Unlock()

	return func() { b.unsubscribe(id) }
}

func (b *bus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish calls every matching handler in subscription order. A panicking handler is
// recovered, logged and reported; the remaining handlers still run.
func (b *bus) Publish(ctx context.Context, event any) error {
	b.mu.RLock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	handled := false
	var errs []error
	for _, s := range subs {
		if !MatchSignature(s.handler.Interface(), event) {
			continue
		}
		handled = true
		if err := b.call(ctx, s, event); err != nil {
			errs = append(errs, err)
		}
	}

	if !handled {
		if b.log != nil {
			b.log.Debugf("eventbus.Publish: no matching subscribers for %T", event)
		}
		return ErrNoSubscribers
	}
	return errors.Join(errs...)
}

func (b *bus) call(ctx context.Context, s subscriber, event any) (err error) {
	handlerName := s.handler.Type().String()
	defer func() {
		if r := recover(); r != nil {
			if b.log != nil {
				b.log.Errorf("eventbus: handler %s panicked with event %T: %v", handlerName, event, r)
			}
			err = fmt.Errorf("eventbus: handler %s panicked: %v", handlerName, r)
		}
	}()

	var in []reflect.Value
	if s.wantCtx {
		in = append(in, reflect.ValueOf(ctx))
	}
	if event == nil {
		in = append(in, reflect.Zero(s.handler.Type().In(len(in))))
	} else {
		in = append(in, reflect.ValueOf(event))
	}

	out := s.handler.Call(in)
	switch {
	case len(out) == 0:
		return nil
	case len(out) > 1:
		return fmt.Errorf("%w: handler %s returned %d values", ErrInvalidHandlerReturn, handlerName, len(out))
	case out[0].Type() != errorType:
		return fmt.Errorf("%w: handler %s return type is %s", ErrInvalidHandlerReturn, handlerName, out[0].Type())
	case out[0].IsNil():
		return nil
	default:
		return out[0].Interface().(error)
	}
}

func (b *bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = nil
}

func (b *bus) SubscribersCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
