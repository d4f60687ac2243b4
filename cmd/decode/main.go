// decode 命令行解码 ATU 上行帧，输出 JSON
//
//	decode 0x0073...            # hex
//	decode -enc base64 AHMn...  # base64
//	echo <payload> | decode -report
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/ingest"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/protocol/atu"
)

func main() {
	enc := flag.String("enc", "", "payload 编码: hex | base64（默认自动识别）")
	report := flag.Bool("report", false, "输出全通道解码结果")
	fPort := flag.Int("port", 0, "LoRaWAN fPort（不参与解码）")
	flag.Parse()

	if err := run(os.Stdin, os.Stdout, flag.Args(), *enc, *fPort, *report); err != nil {
		fmt.Fprintln(os.Stderr, "decode:", err)
		if errors.Is(err, atu.ErrFrameTooShort) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer, args []string, enc string, fPort int, report bool) error {
	payloads := args
	if len(payloads) == 0 {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				payloads = append(payloads, line)
			}
		}
		if err := sc.Err(); err != nil {
			return err
		}
	}
	if len(payloads) == 0 {
		return errors.New("no payload given")
	}

	w := json.NewEncoder(out)
	for _, p := range payloads {
		frame, err := ingest.ParsePayload(p, enc)
		if err != nil {
			return err
		}
		var v any
		if report {
			v, err = atu.DecodeReport(frame)
		} else {
			v, err = atu.DecodeUplink(fPort, frame, nil)
		}
		if err != nil {
			return err
		}
		if err := w.Encode(v); err != nil {
			return err
		}
	}
	return nil
}
