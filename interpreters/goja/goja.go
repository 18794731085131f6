package goja

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Comcast/rulegraph/core"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Exec if the execution is
	// interrupted.
	Interrupted = errors.New(InterruptedMessage)
)

// Interpreter implements core.Interpreter using Goja, which is a Go
// implementation of ECMAScript 5.1+.
//
// The script sees the inbound message at _.msg and returns one of
//
//	a string: the candidate text for the default grammar
//	{grammar: "id", message: "text"}: candidate text for a grammar
//	null or nothing: skip this message
//
// See https://github.com/dop251/goja.
type Interpreter struct {
	// LibraryProvider resolves names listed in a source's
	// "requires".  DefaultLibraryProvider is used when nil.
	LibraryProvider func(ctx context.Context, i *Interpreter, libraryName string) (string, error)

	// Matches, if not nil, is exposed to scripts as
	// _.matches(grammar, text).
	Matches func(grammar, text string) (bool, error)
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// ProvideLibrary resolves the library name into a library.
func (i *Interpreter) ProvideLibrary(ctx context.Context, name string) (string, error) {
	if i.LibraryProvider != nil {
		return i.LibraryProvider(ctx, i, name)
	}
	return DefaultLibraryProvider(ctx, i, name)
}

var DefaultLibraryProvider = MakeFileLibraryProvider(".")

// MakeFileLibraryProvider makes a provider that supports (barely)
// names that are URLs with protocols of "file", "http", and "https".
// File names are relative to the given directory.
func MakeFileLibraryProvider(dir string) func(context.Context, *Interpreter, string) (string, error) {
	return func(ctx context.Context, i *Interpreter, name string) (string, error) {
		parts := strings.SplitN(name, "://", 2)
		if 2 != len(parts) {
			return "", fmt.Errorf("bad link '%s'", name)
		}
		switch parts[0] {
		case "file":
			bs, err := ioutil.ReadFile(dir + "/" + parts[1])
			if err != nil {
				return "", err
			}
			return string(bs), nil
		case "http", "https":
			req, err := http.NewRequestWithContext(ctx, "GET", name, nil)
			if err != nil {
				return "", err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return "", err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return "", fmt.Errorf("library fetch status %s", resp.Status)
			}
			bs, err := ioutil.ReadAll(resp.Body)
			if err != nil {
				return "", err
			}
			return string(bs), nil
		default:
			return "", fmt.Errorf("unknown protocol '%s'", parts[0])
		}
	}
}

func MakeMapLibraryProvider(srcs map[string]string) func(context.Context, *Interpreter, string) (string, error) {
	return func(ctx context.Context, i *Interpreter, name string) (string, error) {
		src, have := srcs[name]
		if !have {
			return "", fmt.Errorf("undefined library '%s'", name)
		}
		return src, nil
	}
}

func wrapSrc(src string) string {
	return fmt.Sprintf("(function() {\n%s\n}());\n", src)
}

// AsSource accepts either a string of code or a map with "code" and
// optional "requires" properties.
//
// Maps can come from either YAML parser (map[interface{}]interface{}
// or map[string]interface{}).
func AsSource(src interface{}) (code string, libs []string, err error) {
	var m map[string]interface{}
	switch vv := src.(type) {
	case string:
		return vv, nil, nil
	case map[interface{}]interface{}:
		m = make(map[string]interface{}, len(vv))
		for k, v := range vv {
			str, ok := k.(string)
			if !ok {
				return "", nil, fmt.Errorf("bad src key (%T)", k)
			}
			m[str] = v
		}
	case map[string]interface{}:
		m = vv
	default:
		return "", nil, fmt.Errorf("bad Goja source (%T)", src)
	}

	s, is := m["code"].(string)
	if !is {
		return "", nil, errors.New("bad Goja code")
	}
	code = s

	switch vv := m["requires"].(type) {
	case nil:
	case string:
		libs = []string{vv}
	case []string:
		libs = vv
	case []interface{}:
		libs = make([]string, 0, len(vv))
		for _, x := range vv {
			lib, is := x.(string)
			if !is {
				return "", nil, errors.New("bad library")
			}
			libs = append(libs, lib)
		}
	default:
		return "", nil, errors.New("bad requires")
	}

	return code, libs, nil
}

// Compile prepends any required libraries and calls goja.Compile.
//
// This method can block if the interpreter's library provider blocks
// in order to obtain external libraries.
func (i *Interpreter) Compile(ctx context.Context, src interface{}) (interface{}, error) {
	code, libs, err := AsSource(src)
	if err != nil {
		return nil, err
	}

	code = wrapSrc(code)

	var libsSrc string
	for _, lib := range libs {
		libSrc, err := i.ProvideLibrary(ctx, lib)
		if err != nil {
			return nil, err
		}
		libsSrc += libSrc + "\n"
	}

	code = libsSrc + code

	obj, err := goja.Compile("", code, true)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + code)
	}

	return obj, nil
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

func export(x interface{}) interface{} {
	if v, is := x.(goja.Value); is {
		return v.Export()
	}
	return x
}

// Exec runs the compiled script against the message.
//
// The following properties are available from the runtime at _:
//
//	msg: the inbound message
//	cronNext(expr): the next time (RFC3339) for the cron expression
//	esc(s): URL query-escape the given string
//	log(x): log x as JSON
//	matches(grammar, text): check text (when the Interpreter has Matches)
func (i *Interpreter) Exec(ctx context.Context, msg interface{}, compiled interface{}) (*core.Extraction, error) {
	p, is := compiled.(*goja.Program)
	if !is {
		return nil, fmt.Errorf("Goja bad compilation: %T %#v", compiled, compiled)
	}

	o := goja.New()

	env := map[string]interface{}{
		"msg": msg,
	}
	o.Set("_", env)

	env["cronNext"] = func(x interface{}) interface{} {
		cronExpr, is := export(x).(string)
		if !is {
			protest(o, "not a string")
		}
		c, err := cronexpr.Parse(cronExpr)
		if err != nil {
			protest(o, err.Error())
		}
		return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
	}

	env["esc"] = func(x interface{}) interface{} {
		s, is := export(x).(string)
		if !is {
			protest(o, "not a string")
		}
		return url.QueryEscape(s)
	}

	env["log"] = func(x interface{}) interface{} {
		x = export(x)
		js, err := json.Marshal(&x)
		if err != nil {
			log.Println("goja.log (can't marshal: " + err.Error() + ")")
		} else {
			log.Println(string(js))
		}
		return x
	}

	if i.Matches != nil {
		env["matches"] = func(g, text interface{}) interface{} {
			gs, is := export(g).(string)
			if !is {
				protest(o, "grammar not a string")
			}
			ts, is := export(text).(string)
			if !is {
				protest(o, "text not a string")
			}
			ok, err := i.Matches(gs, ts)
			if err != nil {
				protest(o, err.Error())
			}
			return ok
		}
	}

	ictx, cancel := context.WithCancel(ctx)
	go func() {
		<-ictx.Done()
		o.Interrupt(InterruptedMessage)
	}()

	v, err := o.RunProgram(p)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return nil, Interrupted
		}
		return nil, err
	}

	switch vv := v.Export().(type) {
	case nil:
		return &core.Extraction{Skip: true}, nil
	case string:
		return &core.Extraction{Message: vv}, nil
	case map[string]interface{}:
		x := &core.Extraction{}
		if s, is := vv["grammar"].(string); is {
			x.Grammar = s
		}
		s, is := vv["message"].(string)
		if !is {
			return nil, fmt.Errorf("extraction %#v has no message string", vv)
		}
		x.Message = s
		return x, nil
	default:
		return nil, fmt.Errorf("%#v (%T) isn't an extraction", vv, vv)
	}
}
