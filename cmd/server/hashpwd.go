package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"PortfolioCMS/internal/auth"
	"PortfolioCMS/internal/config"
)

// hashpwdCmd 生成 ADMIN_PASSWORD_HASH 使用的 bcrypt 哈希
func hashpwdCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hashpwd <password>",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return fmt.Errorf("password must not be empty")
			}
			hash, err := auth.HashPassword(args[0], cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", config.Default().Auth.BcryptCost, "bcrypt 计算成本")
	return cmd
}
