// Package twiml renders provider voice markup.
package twiml

import (
	"encoding/xml"
	"fmt"
)

// ContentType is sent with every rendered document.
const ContentType = "application/xml"

// NoInputMessage is spoken when the caller says nothing after a prompt.
const NoInputMessage = "We did not receive any input. Goodbye."

// GatherOptions describes a prompt followed by speech capture.
type GatherOptions struct {
	Prompt   string
	Action   string
	Language string
	Voice    string
	Hints    string
}

// SayElement represents a <Say> verb.
type SayElement struct {
	XMLName  xml.Name `xml:"Say"`
	Language string   `xml:"language,attr,omitempty"`
	Voice    string   `xml:"voice,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

// GatherElement represents a <Gather> verb collecting speech.
type GatherElement struct {
	XMLName  xml.Name    `xml:"Gather"`
	Input    string      `xml:"input,attr"`
	Action   string      `xml:"action,attr"`
	Method   string      `xml:"method,attr"`
	Language string      `xml:"language,attr,omitempty"`
	Hints    string      `xml:"hints,attr,omitempty"`
	Say      *SayElement `xml:",omitempty"`
}

// HangupElement represents a <Hangup> verb.
type HangupElement struct {
	XMLName xml.Name `xml:"Hangup"`
}

// ResponseElement is the document root. Verbs are emitted in field order.
type ResponseElement struct {
	XMLName xml.Name       `xml:"Response"`
	Gather  *GatherElement `xml:",omitempty"`
	Says    []SayElement   `xml:"Say"`
	Hangup  *HangupElement `xml:",omitempty"`
}

// Renderer serializes call turns. Text is escaped by encoding/xml.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// GatherSpeech plays the prompt, posts recognized speech to opts.Action and
// hangs up with NoInputMessage if nothing is heard.
func (r *Renderer) GatherSpeech(opts GatherOptions) (string, error) {
	response := &ResponseElement{
		Gather: &GatherElement{
			Input:    "speech",
			Action:   opts.Action,
			Method:   "POST",
			Language: opts.Language,
			Hints:    opts.Hints,
			Say:      &SayElement{Language: opts.Language, Voice: opts.Voice, Text: opts.Prompt},
		},
		Says:   []SayElement{{Language: opts.Language, Voice: opts.Voice, Text: NoInputMessage}},
		Hangup: &HangupElement{},
	}
	return marshal(response)
}

// Say speaks text and ends the document.
func (r *Renderer) Say(text, language, voice string) (string, error) {
	response := &ResponseElement{
		Says: []SayElement{{Language: language, Voice: voice, Text: text}},
	}
	return marshal(response)
}

func marshal(response *ResponseElement) (string, error) {
	xmlBytes, err := xml.MarshalIndent(response, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render markup: %w", err)
	}
	return xml.Header + string(xmlBytes), nil
}

// Fallback is served when a turn cannot be rendered at all.
const Fallback = xml.Header + `<Response>
  <Say language="en-US" voice="alice">Thanks for calling. How can I help you today?</Say>
</Response>`
