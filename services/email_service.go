package services

import (
	"fmt"
	"html"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// SendContactEmail transmet au vendeur le message d'un visiteur intéressé
// par son annonce. L'adresse du visiteur est placée en Reply-To pour que le
// vendeur puisse répondre directement.
func SendContactEmail(sellerEmail, sellerName, adTitle, visitorName, visitorEmail, message string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPortStr := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	smtpFrom := os.Getenv("SMTP_FROM")

	if smtpHost == "" || smtpPortStr == "" || smtpUser == "" || smtpPass == "" {
		log.Println("ERREUR: Configuration SMTP manquante (HOST, PORT, USER, PASS)")
		return fmt.Errorf("configuration SMTP incomplète")
	}

	smtpPort, err := strconv.Atoi(smtpPortStr)
	if err != nil {
		log.Printf("ERREUR: SMTP_PORT invalide: %v", err)
		return fmt.Errorf("configuration SMTP invalide (Port)")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", smtpFrom)
	m.SetHeader("To", sellerEmail)
	m.SetHeader("Reply-To", visitorEmail)
	m.SetHeader("Subject", "Quelqu'un est intéressé par votre annonce : "+adTitle)

	// Les données utilisateur sont échappées avant insertion dans l'HTML
	escapedSellerName := html.EscapeString(sellerName)
	escapedAdTitle := html.EscapeString(adTitle)
	escapedVisitorName := html.EscapeString(visitorName)
	escapedVisitorEmail := html.EscapeString(visitorEmail)
	escapedMessage := html.EscapeString(message)

	htmlBody := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="fr">
	<head>
		<meta charset="UTF-8">
		<meta name="viewport" content="width=device-width, initial-scale=1.0">
	</head>
	<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
		<div style="width: 90%%; max-width: 600px; margin: 20px auto; padding: 20px; border: 1px solid #ddd; border-radius: 8px;">

			<p style="font-size: 1.1em;">Bonjour %s,</p>
			<p>%s (%s) vous a écrit à propos de votre annonce <strong>%s</strong> :</p>

			<div style="margin-top: 20px; padding: 15px; background-color: #fdfdfd; border-radius: 5px; border: 1px solid #eee;">
				<p style="margin: 0;">%s</p>
			</div>

			<div style="margin: 25px 0; border-top: 1px solid #eee;"></div>

			<p>Vous pouvez lui répondre directement en répondant à cet email.</p>
			<p>Cordialement,<br>L'équipe QuickAnnonce</p>

		</div>
	</body>
	</html>
	`, escapedSellerName, escapedVisitorName, escapedVisitorEmail, escapedAdTitle, escapedMessage)

	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)

	if err := d.DialAndSend(m); err != nil {
		log.Printf("ERREUR: Échec d'envoi de l'email de contact à %s: %v", sellerEmail, err)
		return err
	}

	log.Printf("Email de contact envoyé avec succès à %s", sellerEmail)
	return nil
}
