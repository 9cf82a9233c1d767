package main

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell/v2"

	"github.com/CodedInternet/gobraille/comms"
	"github.com/CodedInternet/gobraille/onboard"
	"github.com/CodedInternet/gobraille/onboard/braille"
	. "github.com/CodedInternet/gobraille/onboard/errors"
	"github.com/CodedInternet/gobraille/onboard/hardware"
)

// newShell builds the development shell used on the bench.
func newShell(device *onboard.Device, router *comms.Router) *ishell.Shell {
	shell := ishell.New()
	shell.Println("Braille device development shell")
	shell.ShowPrompt(true)

	shell.AddCmd(&ishell.Cmd{
		Name: "createoperator",
		Help: "createoperator <email> <password>",
		Func: func(c *ishell.Context) {
			// disable the '>>>' for cleaner same line input.
			c.ShowPrompt(false)
			defer c.ShowPrompt(true)

			var email string
			if len(c.Args) >= 1 {
				email = c.Args[0]
			} else {
				c.Print("Email: ")
				email = c.ReadLine()
			}

			var password string
			if len(c.Args) >= 2 {
				password = c.Args[1]
			} else {
				c.Print("Password: ")
				password = c.ReadPassword()
			}

			op := &Operator{
				Email: email,
				Name:  email,
				Admin: true,
			}
			if err := op.SetPassword([]byte(password)); err != nil {
				c.Err(err)
				return
			}
			if err := ENV.DB.Save(op); err != nil {
				c.Err(err)
				return
			}

			c.Println("Operator created")
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "render",
		Help: "render <text>",
		Func: func(c *ishell.Context) {
			var res onboard.RenderResult
			err := router.Hold(context.Background(), func(ctx context.Context) (err error) {
				res, err = device.Render(ctx, strings.Join(c.Args, " "))
				return
			})
			if Is(err, ErrBusy) {
				c.Err(err)
				return
			}
			if err != nil {
				c.Err(err)
			}
			c.Printf("%s -> %s\n", res.Previous, res.Target)
			c.Printf("transitions %s, acked %v\n", res.Transitions, res.Emit.Acked)
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "plan",
		Help: "plan <text>",
		Func: func(c *ishell.Context) {
			text := strings.Join(c.Args, " ")
			target, droppedChars, droppedGlyphs := device.Target(text)
			t := hardware.Plan(device.State(), target)
			cmds, _ := hardware.Commands(t)

			c.Printf("target      %s\n", target)
			c.Printf("transitions %s\n", t)
			c.Printf("line        %q\n", hardware.FormatLine(cmds))
			if droppedChars > 0 || droppedGlyphs > 0 {
				c.Printf("dropped %d characters, %d glyphs\n", droppedChars, droppedGlyphs)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "signal",
		Help: "signal <up|down|confirm|cancel>",
		Completer: func([]string) []string {
			return []string{"up", "down", "confirm", "cancel"}
		},
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(New("usage: signal <up|down|confirm|cancel>"))
				return
			}
			sig, ok := comms.ParseSignal(c.Args[0])
			if !ok {
				c.Err(Newf("unknown signal %q", c.Args[0]))
				return
			}
			c.Printf("accepted %v, now in %s\n", router.Handle(sig), router.Current())
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "state",
		Help: "Show the dial positions and navigation state",
		Func: func(c *ishell.Context) {
			state := device.State()
			c.Printf("positions %s (%q)\n", state, device.Codec().Decode(state))
			if t, ok := device.LastTransition(); ok {
				c.Printf("last move %s\n", t)
			}
			out, _ := json.MarshalIndent(router.Snapshot(), "", "  ")
			c.Println(string(out))
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "history",
		Help: "history [count]",
		Func: func(c *ishell.Context) {
			n := 10
			if len(c.Args) > 0 {
				var err error
				if n, err = strconv.Atoi(c.Args[0]); err != nil {
					c.Err(err)
					return
				}
			}
			recs, err := ENV.Journal.Recent(n)
			if err != nil {
				c.Err(err)
				return
			}
			for _, rec := range recs {
				c.Printf("%s  %-12q %s  acked=%v\n",
					rec.CreatedAt.Format("15:04:05"), rec.Text, rec.Transitions, rec.Acked)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "order",
		Help: "Print the dial position ring",
		Func: func(c *ishell.Context) {
			for i, code := range braille.Order {
				c.Printf("%2d:%s ", i, code)
				if i%9 == 8 {
					c.Println()
				}
			}
		},
	})

	return shell
}
