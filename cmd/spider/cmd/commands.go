package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/wonny/stockspider/internal/domain/spider"
	spidersvc "github.com/wonny/stockspider/internal/service/spider"
)

var (
	reportIndicators []string
	companyFields    []string
)

// reportCmd 재무 지표
var reportCmd = &cobra.Command{
	Use:   "report <code>",
	Short: "Latest finance report indicators",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names := toIndicators(reportIndicators, spider.ReportIndicators)
		return withService(cmd, func(ctx context.Context, svc *spidersvc.Service) (interface{}, error) {
			values, err := svc.GetLatestFinanceReport(ctx, spider.SecurityCode(args[0]), names)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"code":   args[0],
				"names":  names,
				"values": values,
			}, nil
		})
	},
}

// positionsCmd 기관 보유 비율
var positionsCmd = &cobra.Command{
	Use:   "positions <code>",
	Short: "Institutional holdings ratio of the latest period",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *spidersvc.Service) (interface{}, error) {
			return svc.GetLatestFundPositionsRatio(ctx, spider.SecurityCode(args[0]))
		})
	},
}

// freeSharesCmd 실질 유통주식
var freeSharesCmd = &cobra.Command{
	Use:   "free-shares <code>",
	Short: "Real free-floating A shares (亿股)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *spidersvc.Service) (interface{}, error) {
			return svc.GetLatestRealFreeShares(ctx, spider.SecurityCode(args[0]))
		})
	},
}

// companyCmd 업종 / 주영업무
var companyCmd = &cobra.Command{
	Use:   "company <code>",
	Short: "Industry and main business from the reference table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names := toIndicators(companyFields, spider.CompanyIndicators)
		return withService(cmd, func(ctx context.Context, svc *spidersvc.Service) (interface{}, error) {
			return svc.GetCompanyInfo(ctx, spider.SecurityCode(args[0]), names)
		})
	},
}

// snapshotCmd 전체 수집
var snapshotCmd = &cobra.Command{
	Use:   "snapshot <code>",
	Short: "Every fact for one security in one document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *spidersvc.Service) (interface{}, error) {
			return svc.GetSnapshot(ctx, spider.SecurityCode(args[0]))
		})
	},
}

func init() {
	reportCmd.Flags().StringSliceVarP(&reportIndicators, "indicator", "i", nil, "indicator names (default: all report indicators)")
	companyCmd.Flags().StringSliceVarP(&companyFields, "field", "f", nil, "company fields (default: 所属行业,主营业务)")
}

// toIndicators falls back to defaults when no names were given
func toIndicators(raw []string, defaults []spider.Indicator) []spider.Indicator {
	if len(raw) == 0 {
		return append([]spider.Indicator(nil), defaults...)
	}
	names := make([]spider.Indicator, 0, len(raw))
	for _, r := range raw {
		names = append(names, spider.Indicator(r))
	}
	return names
}
