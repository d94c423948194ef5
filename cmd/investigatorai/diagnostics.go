package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

func buildHealthCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check a running server's /health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{Timeout: 5 * time.Second}
			resp, err := client.Get("http://" + addr + "/health")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			fmt.Fprintln(cmd.OutOrStdout(), resp.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "Server address")
	return cmd
}

func buildCacheStatsCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "cache-stats",
		Short: "Fetch a running server's /cache/stats endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{Timeout: 5 * time.Second}
			resp, err := client.Get("http://" + addr + "/cache/stats")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			fmt.Fprintln(cmd.OutOrStdout(), resp.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "Server address")
	return cmd
}
