/*
Copyright © 2024 Ryan Painter paintersrp@gmail.com

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Paintersrp/mds/internal/state"
	cmdpkg "github.com/Paintersrp/mds/pkg/cmd"
	"github.com/Paintersrp/mds/pkg/cmd/root"
)

func Execute() {
	v := viper.New()
	loader := cmdpkg.NewLoader(state.Options{Viper: v})

	rootCmd, err := root.NewCmdRoot(loader, v)
	cobra.CheckErr(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	execErr := rootCmd.ExecuteContext(ctx)
	stop()

	closeErr := loader.Close()
	if execErr != nil || closeErr != nil {
		os.Exit(1)
	}
}
