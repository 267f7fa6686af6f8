// Package doclai provides an AI-powered, structure-preserving document translator.
//
// Doclai translates HTML pages, XML course markup and notebook markdown cells
// without disturbing the surrounding markup. Each document type is handled by
// a ContentProcessor that extracts translatable units, the Translator sends
// every unique unit to a Generator once and the processor splices the results
// back into the original tree. A unit that fails to translate keeps its source
// text; it never aborts the document.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/doclai"
//	    "github.com/ZaguanLabs/doclai/processor"
//	    "github.com/ZaguanLabs/doclai/provider"
//	)
//
//	func main() {
//	    // Create generator
//	    g := provider.NewOpenAIProvider(provider.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//
//	    // Create translator
//	    t := doclai.NewTranslator("Ukrainian", doclai.NewClient(g),
//	        doclai.WithProcessor(processor.NewXMLProcessor()),
//	    )
//
//	    // Translate OLX
//	    result, err := t.Process(context.Background(), "<problem><label>Hello</label></problem>", doclai.TypeXML)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result.Content) // <problem><label>Привіт</label></problem>
//	}
package doclai
