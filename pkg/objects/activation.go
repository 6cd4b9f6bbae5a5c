package objects

import (
	"github.com/adt-protocol/adt-go/pkg/schema"
)

// Activation response types.
var (
	msgShortTextItems = schema.List("Text", "txt")
	msgShortTextType  = schema.NewType("ShortText", nil, nil, msgShortTextItems)

	msgObjDescr  = schema.Attribute("ObjectDescription", "objDescr")
	msgType      = schema.Attribute("Type", "type")
	msgLine      = schema.Attribute("Line", "line", schema.WithCodec(schema.IntCodec))
	msgHref      = schema.Attribute("Href", "href")
	msgForce     = schema.Attribute("ForceSupported", "forceSupported", schema.WithCodec(schema.BoolCodec))
	msgShortText = schema.Element("ShortText", "shortText", flagsFactory(msgShortTextType))

	ActivationMessageType = schema.NewType("ActivationMessage", nil, nil,
		msgObjDescr, msgType, msgLine, msgHref, msgForce, msgShortText)

	propCheck      = schema.Attribute("CheckExecuted", "checkExecuted", schema.WithCodec(schema.BoolCodec))
	propActivation = schema.Attribute("ActivationExecuted", "activationExecuted", schema.WithCodec(schema.BoolCodec))
	propGeneration = schema.Attribute("GenerationExecuted", "generationExecuted", schema.WithCodec(schema.BoolCodec))
	propertiesType = schema.NewType("ActivationProperties", nil, nil, propCheck, propActivation, propGeneration)

	actProperties = schema.Element("Properties", "chkl:properties", flagsFactory(propertiesType))
	actMessages   = schema.List("Messages", "msg", schema.WithFactory(func(owner schema.Object) schema.Object {
		return &ActivationMessage{Base: schema.NewBase(ActivationMessageType, schema.VersionOf(owner))}
	}))

	ActivationResultType = schema.NewType("ActivationResult", nil, mustDescriptor("activationResult"),
		actMessages, actProperties)
)

// ActivationMessage is one message of an activation run.
type ActivationMessage struct {
	schema.Base
}

// Severity returns the message type: E, W or I.
func (m *ActivationMessage) Severity() string { return schema.Value[string](m, msgType) }

// IsError reports whether the message blocks activation.
func (m *ActivationMessage) IsError() bool {
	s := m.Severity()
	return s == "E" || s == "A" || s == "X"
}

// ObjectDescription returns the description of the affected object.
func (m *ActivationMessage) ObjectDescription() string { return schema.Value[string](m, msgObjDescr) }

// Line returns the source line, 0 when unknown.
func (m *ActivationMessage) Line() int { return schema.Value[int](m, msgLine) }

// Href returns the location of the message in the source.
func (m *ActivationMessage) Href() string { return schema.Value[string](m, msgHref) }

// Text returns the message text.
func (m *ActivationMessage) Text() string {
	st, ok := msgShortText.Get(m).(*Flags)
	if !ok {
		return ""
	}
	var out string
	for i, v := range msgShortTextItems.Container(st).All() {
		if i > 0 {
			out += " "
		}
		out += msgShortTextItems.Format(v)
	}
	return out
}

// ActivationResult is the chkl:messages answer to an activation request.
// An empty body means the activation succeeded without messages.
type ActivationResult struct {
	schema.Base
}

// NewActivationResult creates an empty result to deserialize into.
func NewActivationResult() *ActivationResult {
	return &ActivationResult{Base: schema.NewBase(ActivationResultType, "")}
}

// Messages returns all messages.
func (r *ActivationResult) Messages() []*ActivationMessage {
	return schema.Items[*ActivationMessage](actMessages.Container(r))
}

// Errors returns the messages that block activation.
func (r *ActivationResult) Errors() []*ActivationMessage {
	var out []*ActivationMessage
	for _, m := range r.Messages() {
		if m.IsError() {
			out = append(out, m)
		}
	}
	return out
}

// OK reports whether the activation succeeded.
func (r *ActivationResult) OK() bool {
	if len(r.Errors()) > 0 {
		return false
	}
	p, ok := actProperties.Get(r).(*Flags)
	if !ok {
		return true
	}
	executed, _ := p.Get("ActivationExecuted").(bool)
	return executed
}
