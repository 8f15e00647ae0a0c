package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"iris-go/internal/grpcserver"
	"iris-go/pkg/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "адрес HTTP API")
	grpcAddr := flag.String("grpc", "", "адрес gRPC сервера; если задан, кадр отправляется по gRPC")
	watch := flag.Bool("watch", false, "подписаться на импульсы по gRPC")
	flag.Parse()

	if *watch {
		if err := watchPulses(*grpcAddr); err != nil {
			fmt.Printf("Ошибка подписки на импульсы: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Проверяем health endpoint
	fmt.Println("Проверяем health endpoint...")
	if err := checkHealth(*baseURL); err != nil {
		fmt.Printf("Ошибка при обращении к health endpoint: %v\n", err)
		os.Exit(1)
	}

	// Каждый аргумент объект кадра, метки через запятую: "Dog" "Chair,Furniture"
	if flag.NArg() == 0 {
		fmt.Println("Для отправки кадра запустите: client Person \"Chair,Furniture\"")
		return
	}

	frame := buildFrame(flag.Args())
	var err error
	if *grpcAddr != "" {
		err = sendFrameGRPC(*grpcAddr, frame)
	} else {
		err = sendFrameHTTP(*baseURL, frame)
	}
	if err != nil {
		fmt.Printf("Ошибка отправки кадра: %v\n", err)
		os.Exit(1)
	}
}

func buildFrame(args []string) models.FrameRequest {
	now := time.Now().UnixMilli()
	frame := models.FrameRequest{TimestampMs: &now}
	for _, arg := range args {
		object := models.DetectedObject{}
		for _, label := range strings.Split(arg, ",") {
			object.Labels = append(object.Labels, models.Label{Text: strings.TrimSpace(label), Confidence: 1})
		}
		frame.Objects = append(frame.Objects, object)
	}
	return frame
}

func checkHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	fmt.Printf("Health check ответ (статус %d):\n%s\n\n", resp.StatusCode, string(body))
	return nil
}

func sendFrameHTTP(baseURL string, frame models.FrameRequest) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("ошибка кодирования кадра: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(baseURL+"/api/v1/frames", "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("ошибка отправки запроса: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	fmt.Printf("Ответ оценки кадра (статус %d):\n%s\n", resp.StatusCode, string(respBody))
	return nil
}

func dial(addr string) (*grpc.ClientConn, error) {
	if addr == "" {
		addr = "localhost:9090"
	}
	return grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
}

func sendFrameGRPC(addr string, frame models.FrameRequest) error {
	conn, err := dial(addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := grpcserver.NewClient(conn).Evaluate(ctx, frame)
	if err != nil {
		return err
	}
	fmt.Printf("Ответ оценки кадра: alert=%v obstacle=%q state=%s\n", resp.Alert, resp.Obstacle, resp.State)
	return nil
}

func watchPulses(addr string) error {
	conn, err := dial(addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	stream, err := grpcserver.NewClient(conn).Alerts(context.Background())
	if err != nil {
		return err
	}
	fmt.Println("Ожидаем импульсы...")
	for {
		pulse, err := stream.Recv()
		if err != nil {
			return err
		}
		fmt.Printf("Импульс %v: %s\n", pulse.Duration, pulse.Obstacle)
	}
}
