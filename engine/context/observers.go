package context

import "github.com/npillmayer/tytex/engine/token"

// InteractionObserver is called with the new interaction mode.
type InteractionObserver func(Interaction)

// CodeObserver is called when the meaning of a token changes.
type CodeObserver func(tok token.Token, code Code)

// CountObserver is called when a count register changes.
type CountObserver func(name string, v int64)

type observers struct {
	interaction []InteractionObserver
	code        map[token.Token][]CodeObserver
	count       map[string][]CountObserver
}

// ObserveInteraction registers an observer for changes of the interaction
// mode, including changes caused by closing a group.
func (ctx *Context) ObserveInteraction(obs InteractionObserver) {
	ctx.observers.interaction = append(ctx.observers.interaction, obs)
}

// ObserveCode registers an observer for assignments to the meaning of tok.
func (ctx *Context) ObserveCode(tok token.Token, obs CodeObserver) {
	if ctx.observers.code == nil {
		ctx.observers.code = make(map[token.Token][]CodeObserver)
	}
	ctx.observers.code[tok] = append(ctx.observers.code[tok], obs)
}

// ObserveCount registers an observer for assignments to a count register.
func (ctx *Context) ObserveCount(name string, obs CountObserver) {
	if ctx.observers.count == nil {
		ctx.observers.count = make(map[string][]CountObserver)
	}
	ctx.observers.count[name] = append(ctx.observers.count[name], obs)
}

func (o *observers) notifyInteraction(mode Interaction) {
	for _, obs := range o.interaction {
		obs(mode)
	}
}

func (o *observers) notifyCode(tok token.Token, code Code) {
	for _, obs := range o.code[tok] {
		obs(tok, code)
	}
}

func (o *observers) notifyCount(name string, v int64) {
	for _, obs := range o.count[name] {
		obs(name, v)
	}
}
