package telephony

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"time"

	"call-cascade/internal/cascade"
)

// TwiML is a minimal Twilio Markup Language response builder.
// It intentionally avoids any provider SDK dependency.
//
// Only the verbs the cascade controller can emit are modeled: Dial with a
// Number child and a status-callback action, Hangup, and the voicemail
// pair Say + Record.

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type twimlDial struct {
	XMLName xml.Name    `xml:"Dial"`
	Timeout string      `xml:"timeout,attr,omitempty"`
	Action  string      `xml:"action,attr,omitempty"`
	Method  string      `xml:"method,attr,omitempty"`
	Number  twimlNumber `xml:"Number"`
}

type twimlNumber struct {
	Number string `xml:",chardata"`
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

type twimlSay struct {
	XMLName xml.Name `xml:"Say"`
	Text    string   `xml:",chardata"`
}

type twimlRecord struct {
	XMLName   xml.Name `xml:"Record"`
	Action    string   `xml:"action,attr,omitempty"`
	Method    string   `xml:"method,attr,omitempty"`
	MaxLength string   `xml:"maxLength,attr,omitempty"`
	PlayBeep  string   `xml:"playBeep,attr,omitempty"`
}

// defaultFallbackMessage is spoken in voicemail mode when no message is
// configured.
const defaultFallbackMessage = "We are unable to take your call right now. Please leave a message after the tone."

const voicemailMaxLength = 120 * time.Second

// RenderTwiML maps a cascade directive to the TwiML the platform executes.
func RenderTwiML(d cascade.Directive, urls CallbackURLs) (string, error) {
	var r twimlResponse

	switch d.Kind {
	case cascade.KindDial:
		if d.Number == "" {
			return "", errors.New("telephony: number required for dial directive")
		}
		r.Verbs = append(r.Verbs, twimlDial{
			Timeout: seconds(d.RingTimeout),
			Action:  urls.DialStatus(d.AttemptIndex),
			Method:  "POST",
			Number:  twimlNumber{Number: d.Number},
		})
	case cascade.KindEndCall, cascade.KindHangup:
		r.Verbs = append(r.Verbs, twimlHangup{})
	case cascade.KindVoicemail:
		msg := d.Message
		if msg == "" {
			msg = defaultFallbackMessage
		}
		r.Verbs = append(r.Verbs,
			twimlSay{Text: msg},
			twimlRecord{
				Action:    urls.Recording(),
				Method:    "POST",
				MaxLength: seconds(voicemailMaxLength),
				PlayBeep:  "true",
			},
		)
	default:
		return "", fmt.Errorf("telephony: unknown directive kind %q", d.Kind)
	}

	return encodeResponse(r)
}

// RenderHangup is the terminal response for callbacks that need no further
// call control (e.g. after a recording completes).
func RenderHangup() (string, error) {
	return encodeResponse(twimlResponse{Verbs: []any{twimlHangup{}}})
}

func encodeResponse(r twimlResponse) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func seconds(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return strconv.Itoa(int(d / time.Second))
}
