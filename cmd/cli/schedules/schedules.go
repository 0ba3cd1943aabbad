package schedules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/agripulse/agripulse/cmd/cli/config"
	"github.com/agripulse/agripulse/cmd/cli/output"
	"github.com/agripulse/agripulse/cmd/cli/root"
	"github.com/agripulse/agripulse/internal/models"
)

func init() {
	schedulesCmd := &cobra.Command{
		Use:   "schedules",
		Short: "Manage report delivery schedules",
	}

	schedulesCmd.AddCommand(
		listSchedulesCmd(),
		createScheduleCmd(),
		deleteScheduleCmd(),
	)

	root.GetRoot().AddCommand(schedulesCmd)
}

func listSchedulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List schedules",
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.ReadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("GET", config.APIURL()+"/v1/schedules", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var schedules []models.Schedule
			if err := json.NewDecoder(resp.Body).Decode(&schedules); err != nil {
				fmt.Println("decode response:", err)
				return
			}

			rows := make([][]interface{}, 0, len(schedules))
			for _, s := range schedules {
				next := ""
				if s.NextSendAt != nil {
					next = s.NextSendAt.Format(time.RFC3339)
				}
				rows = append(rows, []interface{}{
					s.ID, s.FarmName, s.Frequency, s.SendTime, s.Timezone, s.IsActive, next, s.SendCount,
				})
			}
			output.RenderTable(
				[]string{"ID", "Farm", "Frequency", "Time", "Timezone", "Active", "Next send", "Sent"},
				rows)
		},
	}
}

func createScheduleCmd() *cobra.Command {
	var farmID, dayOfMonth int
	var frequency, sendTime, timezone, prefix string
	var daysOfWeek []int
	var audio bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create schedule",
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.ReadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			payload := map[string]interface{}{
				"farm_id":       farmID,
				"frequency":     frequency,
				"send_time":     sendTime,
				"timezone":      timezone,
				"include_audio": audio,
			}
			if len(daysOfWeek) > 0 {
				payload["days_of_week"] = daysOfWeek
			}
			if dayOfMonth > 0 {
				payload["day_of_month"] = dayOfMonth
			}
			if prefix != "" {
				payload["message_prefix"] = prefix
			}
			body, _ := json.Marshal(payload)

			req, _ := http.NewRequest("POST", config.APIURL()+"/v1/schedules", bytes.NewBuffer(body))
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Content-Type", "application/json")

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var out any
			json.NewDecoder(resp.Body).Decode(&out)
			b, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(b))
		},
	}

	cmd.Flags().IntVar(&farmID, "farm", 0, "farm id")
	cmd.Flags().StringVar(&frequency, "frequency", "daily", "daily, weekly, monthly, or custom")
	cmd.Flags().StringVar(&sendTime, "time", "08:00", "send time HH:MM, local to the timezone")
	cmd.Flags().StringVar(&timezone, "timezone", "UTC", "IANA timezone, e.g. Africa/Casablanca")
	cmd.Flags().IntSliceVar(&daysOfWeek, "days", nil, "days of week for weekly (0=Sunday..6=Saturday)")
	cmd.Flags().IntVar(&dayOfMonth, "day-of-month", 0, "day of month for monthly (1-31)")
	cmd.Flags().BoolVar(&audio, "audio", false, "attach the audio narration")
	cmd.Flags().StringVar(&prefix, "prefix", "", "message prefix")

	return cmd
}

func deleteScheduleCmd() *cobra.Command {
	var id int

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete schedule",
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.ReadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("DELETE", fmt.Sprintf("%s/v1/schedules/%d", config.APIURL(), id), nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNoContent {
				fmt.Println("Schedule deleted")
			} else {
				fmt.Println("Delete failed, status:", resp.StatusCode)
			}
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "schedule id")

	return cmd
}
