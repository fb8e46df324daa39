// Package tlrun translates plain text and HTML fragments for mail clients.
//
// A Translator detects the source language, makes sure a backend can serve
// the language pair, and translates either the whole text or, for HTML, every
// substantial text node while leaving tags, attributes and comments alone.
// Backends are either the offline Argos engine (package argos) or one of the
// remote providers (package provider).
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/tlrun"
//	    "github.com/ZaguanLabs/tlrun/detect"
//	    "github.com/ZaguanLabs/tlrun/processor"
//	    "github.com/ZaguanLabs/tlrun/provider"
//	)
//
//	func main() {
//	    p, _ := provider.New(context.Background(), "libre", provider.Options{})
//
//	    t := tlrun.NewTranslator("en", tlrun.NewRetryableProvider(p, tlrun.DefaultRetryConfig()),
//	        tlrun.WithDetector(detect.NewWhatLang()),
//	        tlrun.WithProcessor(processor.NewHTMLProcessor()),
//	        tlrun.WithAutoSource(true),
//	    )
//
//	    res := t.Translate(context.Background(), tlrun.Request{
//	        Text:   "<p>Hola <b>mundo</b></p>",
//	        IsHTML: true,
//	    })
//	    fmt.Println(res.Translated) // <p>Hello <b>world</b></p>
//	}
package tlrun
