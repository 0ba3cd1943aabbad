package reports

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agripulse/agripulse/cmd/cli/config"
	"github.com/agripulse/agripulse/cmd/cli/root"
	"github.com/agripulse/agripulse/internal/models"
)

func init() {
	reportsCmd := &cobra.Command{
		Use:   "reports",
		Short: "Generate and read farm reports",
	}

	reportsCmd.AddCommand(
		latestReportCmd(),
		generateReportCmd(),
	)

	root.GetRoot().AddCommand(reportsCmd)
}

func latestReportCmd() *cobra.Command {
	var farmID int

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the latest report for a farm",
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.ReadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			url := fmt.Sprintf("%s/v1/farms/%d/reports/latest", config.APIURL(), farmID)
			req, _ := http.NewRequest("GET", url, nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				fmt.Println("No reports for this farm yet")
				return
			}

			var rep models.Report
			if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
				fmt.Println("decode response:", err)
				return
			}
			printReport(rep)
		},
	}

	cmd.Flags().IntVar(&farmID, "farm", 0, "farm id")

	return cmd
}

func generateReportCmd() *cobra.Command {
	var farmID int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a fresh report for a farm now",
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.ReadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			url := fmt.Sprintf("%s/v1/farms/%d/reports", config.APIURL(), farmID)
			req, _ := http.NewRequest("POST", url, nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusCreated {
				var apiErr struct {
					Error string `json:"error"`
				}
				json.NewDecoder(resp.Body).Decode(&apiErr)
				fmt.Printf("Generation failed (status %d): %s\n", resp.StatusCode, apiErr.Error)
				return
			}

			var rep models.Report
			if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
				fmt.Println("decode response:", err)
				return
			}
			printReport(rep)
		},
	}

	cmd.Flags().IntVar(&farmID, "farm", 0, "farm id")

	return cmd
}

func printReport(rep models.Report) {
	fmt.Printf("Report #%d  [%s]  %s\n", rep.ID, strings.ToUpper(rep.Status), rep.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Println(rep.Summary)
	if rep.WeatherAnalysis != "" {
		fmt.Println("\nWeather:", rep.WeatherAnalysis)
	}
	if rep.SoilAnalysis != "" {
		fmt.Println("Soil:", rep.SoilAnalysis)
	}
	if len(rep.Recommendations) > 0 {
		fmt.Println("\nRecommendations:")
		for _, rec := range rep.Recommendations {
			fmt.Println("  -", rec)
		}
	}
	if rep.AudioURL != "" {
		fmt.Println("\nAudio:", rep.AudioURL)
	}
}
