package main

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sigcr-dev/rehab-manager/backend/internal/config"
	"github.com/sigcr-dev/rehab-manager/backend/internal/domain"
	"github.com/sigcr-dev/rehab-manager/backend/internal/notifier"
	"github.com/wneessen/go-mail"
)

// asunto y plantilla de correo para cada tipo de mensaje que el worker
// sabe entregar
var mailTemplates = map[domain.NotificationType]struct {
	Subject  string
	Template string
}{
	domain.NotificationCuentaCreada: {
		Subject:  "SIGCR - Datos de su cuenta",
		Template: "./templates/cuenta_creada.html",
	},
	domain.NotificationResetPassword: {
		Subject:  "SIGCR - Restablecer contrasena",
		Template: "./templates/reset_password.html",
	},
	domain.NotificationCronogramaCambio: {
		Subject:  "SIGCR - Cronograma modificado",
		Template: "./templates/cronograma_cambio.html",
	},
}

func main() {
	/**********************************************
	 * crear logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	/**********************************************
	 * cargar configuracion
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("no se pudo cargar la configuracion", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * crear el cliente de correo
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("no se pudo crear el cliente de correo", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	// verificar la conexion con el servidor de correo
	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("no se pudo conectar al servidor de correo", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * conectar a rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("no se pudo conectar a rabbitmq", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("no se pudo abrir el canal", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		notifier.QueueName,
		true,  // durable
		false, // no autoborrar la cola aunque no haya consumidores
		false, // no exclusiva
		false, // esperar confirmacion de rabbitmq
		nil,
	)
	if err != nil {
		logger.Error("no se pudo declarar la cola", slog.String("error", err.Error()))
		return
	}

	// escuchar CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(
		q.Name,
		"",    // identificador asignado por rabbitmq
		false, // ack manual
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("no se pudo consumir la cola", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				logger.Info("mensaje recibido", slog.String("message", string(msg.Body)))

				notification := domain.NotificationMessage{}
				if err := json.Unmarshal(msg.Body, &notification); err != nil {
					logger.Error("no se pudo deserializar el mensaje", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				entry, ok := mailTemplates[notification.Type]
				if !ok {
					logger.Error("tipo de mensaje no soportado", slog.String("type", string(notification.Type)))
					_ = msg.Nack(false, false)
					continue
				}

				if len(notification.To) == 0 {
					logger.Error("el mensaje no tiene destinatarios", slog.String("type", string(notification.Type)))
					_ = msg.Nack(false, false)
					continue
				}

				// construir el correo
				m := mail.NewMsg()
				if err := m.From(cfg.Email.SMTP.Username); err != nil {
					logger.Error("no se pudo establecer el remitente", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				if err := m.To(notification.To...); err != nil {
					logger.Error("no se pudo establecer los destinatarios", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				tmpl, err := template.ParseFiles(entry.Template)
				if err != nil {
					logger.Error("no se pudo cargar la plantilla", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				if err := m.SetBodyHTMLTemplate(tmpl, notification.Data); err != nil {
					logger.Error("no se pudo renderizar el cuerpo del correo", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				m.Subject(entry.Subject)

				// enviar
				if err := client.DialAndSend(m); err != nil {
					logger.Error("no se pudo enviar el correo", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // reencolar para reintentar
					continue
				}

				_ = msg.Ack(false)
			}
		}
	}()

	logger.Info("esperando mensajes... (CTRL+C para salir)")
	<-sigChan

	slog.Info("apagando el worker de notificaciones...")
	cancel()
	wg.Wait()
	slog.Info("worker de notificaciones apagado correctamente")
}
