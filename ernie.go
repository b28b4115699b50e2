// Package ernie translates text with Baidu's ERNIE chat models.
//
// A call validates the caller's parameter bag, renders the prompt template,
// resolves an access token (from a cached credential file when it is still
// fresh) and posts the payload to the chat endpoint.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/ernie"
//	    "github.com/ZaguanLabs/ernie/credential"
//	    "github.com/ZaguanLabs/ernie/provider"
//	)
//
//	func main() {
//	    tokens := credential.NewCache(
//	        credential.NewFileStore("/path/to/access_token.json"),
//	        credential.NewHTTPFetcher(credential.FetcherConfig{}),
//	    )
//	    t := ernie.NewTranslator(tokens, provider.NewErnieProvider(provider.ErnieConfig{}))
//
//	    out, err := t.Translate(context.Background(), "你好，世界！", "auto", "en", "", map[string]string{
//	        "api_key":      os.Getenv("ERNIE_API_KEY"),
//	        "secret_key":   os.Getenv("ERNIE_SECRET_KEY"),
//	        "model_string": "ernie-lite-8k",
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(out) // Hello, world!
//	}
package ernie
