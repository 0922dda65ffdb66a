package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"roamgenie/internal/config"
	"roamgenie/internal/modules/scanner"
	"roamgenie/internal/modules/warroom"
)

func newScanCmd(configPath *string) *cobra.Command {
	var (
		file     string
		image    bool
		passport string
		whatsapp string
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run the Trip DNA scanner on a booking confirmation",
		Example: "  roamgenie scan --file confirmation.txt --passport India\n" +
			"  roamgenie scan --file screenshot.png --image",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := cliApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			req := scanner.Request{PassportCountry: passport, WhatsAppNumber: whatsapp}

			var res scanner.Result
			if image || isImageFile(file) {
				res, err = a.scanner.ProcessImage(ctx, data, http.DetectContentType(data), req)
			} else {
				req.Text = string(data)
				res, err = a.scanner.ProcessText(ctx, req)
			}
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "confirmation text or screenshot")
	cmd.Flags().BoolVar(&image, "image", false, "treat the file as an image and OCR it")
	cmd.Flags().StringVar(&passport, "passport", "", "traveller passport country")
	cmd.Flags().StringVar(&whatsapp, "whatsapp", "", "send the summary to this WhatsApp number")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newWarRoomCmd(configPath *string) *cobra.Command {
	var (
		flight      string
		destination string
		layover     int
		whatsapp    string
	)
	cmd := &cobra.Command{
		Use:     "warroom",
		Short:   "Build a disruption intel brief for a flight",
		Example: "  roamgenie warroom --flight EK502 --destination Dubai --layover 90",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := cliApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			req := warroom.MonitorRequest{
				FlightIATA:     flight,
				Destination:    destination,
				WhatsAppNumber: whatsapp,
			}
			if cmd.Flags().Changed("layover") {
				req.LayoverMinutes = &layover
			}
			res, err := a.warroom.Monitor(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	cmd.Flags().StringVar(&flight, "flight", "", "flight IATA code, e.g. EK502")
	cmd.Flags().StringVar(&destination, "destination", "", "final destination for advisories")
	cmd.Flags().IntVar(&layover, "layover", 0, "layover minutes at the connection")
	cmd.Flags().StringVar(&whatsapp, "whatsapp", "", "send the alert to this WhatsApp number")
	_ = cmd.MarkFlagRequired("flight")
	return cmd
}

func cliApp(ctx context.Context, configPath string) (context.Context, *app, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	a, err := buildApp(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return ctx, a, nil
}

func isImageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".webp", ".gif":
		return true
	}
	return false
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
