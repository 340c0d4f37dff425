/*
Package jsonapi
Transport layer for talking to {json:api} backends.

Usage:

    import "github.com/sugar-tools/sugar/pkg/jsonapi"

    api := jsonapi.Connection{Logger: hclog.Default()}

    body, err := api.Request(ctx, "GET", "http://localhost:8080/v1/users/1",
        map[string]string{"Accept": jsonapi.ContentType}, nil)
    var e *jsonapi.Error
    if errors.As(err, &e) {
        // The server answered with a non-2xx status
        for _, item := range e.Errors {
            fmt.Println(item.Detail)
        }
    }

    var payload jsonapi.PayloadSingular
    err = json.Unmarshal(body, &payload)
    fmt.Println(payload.Data.Attributes["username"])

Higher level, stateful access to a single resource lives in the 'model'
package; this package only moves bytes and classifies responses.
*/
package jsonapi
