/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

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
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gotpfa/transport"
)

// ConfigCmd prints the effective transport solver options
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective transport solver options",
	Long: `Print the transport solver options after applying defaults, the config
file and GOTPFA_ environment variables`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := transport.ConfigFromViper(viper.GetViper())
		if err != nil {
			return err
		}
		cfg.Print()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ConfigCmd)
}
