package commands

import (
	"context"
	"fmt"

	"github.com/sidereusnuntius/campus/internal/theme"
)

func Theme(ctx context.Context, env *Env, args []string) error {
	m := env.State.Theme
	switch len(args) {
	case 0:
	case 1:
		mode, err := theme.ParseMode(args[0])
		if err != nil {
			return usage("%s", err)
		}
		if err = m.SetMode(ctx, mode); err != nil {
			return err
		}
	default:
		return usage("theme [light|dark|system]")
	}
	fmt.Fprintf(env.Out, "mode: %s\ntheme: %s\n", m.Mode(), m.Current().Name)
	return nil
}
